package character

import "github.com/luarena/luarena/internal/geo"

// InitialHP is the hit-point total every character starts a round with.
const InitialHP = 100.0

// Stats tracks per-character results across rounds. It survives round
// resets for the lifetime of a game.
type Stats struct {
	RoundsWon uint32
}

// State is the mutable physical state of a character. It is owned by
// the game loop and mutated only by the event-advancement step; script
// runtimes see it through read-only Snapshot values.
type State struct {
	HP             float64
	Pos            geo.Point
	Heading        float64
	HeadHeading    float64
	ArmsHeading    float64
	AttackCooldown uint8
	Stats          Stats
}

// NewState returns a full-health state at the origin.
func NewState() *State {
	return &State{HP: InitialHP}
}

// Reset prepares the state for a new round. Win statistics are kept.
func (s *State) Reset(pos geo.Point) {
	s.HP = InitialHP
	s.Pos = pos
	s.Heading = 0
	s.HeadHeading = 0
	s.ArmsHeading = 0
	s.AttackCooldown = 0
}

// EffectiveHeadHeading is the absolute direction the head faces: body
// heading plus head offset, normalized.
func (s *State) EffectiveHeadHeading() float64 {
	return geo.NormalizeAbsoluteAngle(s.Heading + s.HeadHeading)
}

// EffectiveArmsHeading is the absolute direction the arms point.
func (s *State) EffectiveArmsHeading() float64 {
	return geo.NormalizeAbsoluteAngle(s.Heading + s.ArmsHeading)
}

// Alive reports whether the character can still act this round.
func (s *State) Alive() bool {
	return s.HP > 0
}

// Intent is what a character currently wants to do. Commands returned
// by the runtime update it; the physical stages consume it tick by
// tick. The game loop is the only writer.
type Intent struct {
	Direction     Direction
	Distance      float64
	Attack        bool
	TurnAngle     float64
	TurnHeadAngle float64
	TurnArmsAngle float64
}

// Snapshot is the read-only view of a character's own state handed to
// its runtime with every tick event.
type Snapshot struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	HP                float64 `json:"hp"`
	Heading           float64 `json:"heading"`
	HeadHeading       float64 `json:"head_heading"`
	ArmsHeading       float64 `json:"arms_heading"`
	AttackCooldown    uint8   `json:"attack_cooldown"`
	TurnRemaining     float64 `json:"turn_remaining"`
	HeadTurnRemaining float64 `json:"head_turn_remaining"`
	ArmsTurnRemaining float64 `json:"arms_turn_remaining"`
}

// NewSnapshot captures state and pending intent into a Snapshot.
func NewSnapshot(state *State, intent Intent) Snapshot {
	return Snapshot{
		X:                 state.Pos.X,
		Y:                 state.Pos.Y,
		HP:                state.HP,
		Heading:           state.Heading,
		HeadHeading:       state.HeadHeading,
		ArmsHeading:       state.ArmsHeading,
		AttackCooldown:    state.AttackCooldown,
		TurnRemaining:     intent.TurnAngle,
		HeadTurnRemaining: intent.TurnHeadAngle,
		ArmsTurnRemaining: intent.TurnArmsAngle,
	}
}
