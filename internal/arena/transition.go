package arena

import (
	"math"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

// clampActionAngle bounds a head or arms offset to the symmetric angle
// of action around the body heading.
func clampActionAngle(angle float64) float64 {
	return geo.Clamp(angle, -AngleOfAction, AngleOfAction)
}

// directionOffset maps a relative movement direction to its heading
// offset from the body heading.
func directionOffset(d character.Direction) float64 {
	switch d {
	case character.Backward:
		return math.Pi
	case character.Left:
		return -geo.HalfPi
	case character.Right:
		return geo.HalfPi
	default:
		return 0
	}
}

type moveCandidate struct {
	slot  *slot
	delta geo.Point
	next  geo.Point
}

// transitionCharacters resolves turning and movement for every living
// character. All candidate positions are computed before any collision
// is judged, so the outcome does not depend on iteration order.
func (g *Game) transitionCharacters() {
	living := g.livingSlots()
	candidates := make([]moveCandidate, 0, len(living))

	for _, s := range living {
		turnDelta := geo.Clamp(s.intent.TurnAngle, -MaxTurnRate, MaxTurnRate)
		g.events.Record(event.CharacterTurned{Character: s.id, Delta: turnDelta})
		g.transitionHead(s)
		g.transitionArms(s)

		heading := geo.NormalizeAbsoluteAngle(s.state.Heading + turnDelta)
		velocity := math.Min(s.intent.Distance, MaxVelocity)
		movementHeading := heading + directionOffset(s.intent.Direction)
		delta := geo.Point{
			X: math.Sin(movementHeading) * velocity,
			Y: -math.Cos(movementHeading) * velocity,
		}
		next := s.state.Pos.Add(delta)
		if !validPosition(next) {
			// Blocked by the wall: no movement this tick, intent keeps
			// its remaining distance.
			delta = geo.Point{}
			next = s.state.Pos
		}
		candidates = append(candidates, moveCandidate{slot: s, delta: delta, next: next})
	}

	for i, cand := range candidates {
		delta := cand.delta
		for j, other := range candidates {
			if i == j {
				continue
			}
			if charactersCollide(cand.next, other.next) {
				// Both parties of a colliding pair stay put.
				delta = geo.Point{}
				break
			}
		}
		g.events.Record(event.CharacterPositionUpdated{Character: cand.slot.id, Delta: delta})
	}
}

// transitionHead clamps the pending head turn to the per-tick rate and
// to the angle of action, then records the applied delta.
func (g *Game) transitionHead(s *slot) {
	delta := geo.Clamp(s.intent.TurnHeadAngle, -MaxHeadTurnRate, MaxHeadTurnRate)
	current := s.state.HeadHeading
	effective := clampActionAngle(current+delta) - current
	g.events.Record(event.CharacterHeadTurned{Character: s.id, Delta: effective})
}

func (g *Game) transitionArms(s *slot) {
	delta := geo.Clamp(s.intent.TurnArmsAngle, -MaxArmsTurnRate, MaxArmsTurnRate)
	current := s.state.ArmsHeading
	effective := clampActionAngle(current+delta) - current
	g.events.Record(event.CharacterArmsTurned{Character: s.id, Delta: effective})
}

// validPosition keeps the character's full radius inside the arena.
func validPosition(p geo.Point) bool {
	return p.X >= CharacterRadius && p.X <= ArenaWidth-CharacterRadius &&
		p.Y >= CharacterRadius && p.Y <= ArenaHeight-CharacterRadius
}

func charactersCollide(p, q geo.Point) bool {
	return p.Dist(q) <= 2*CharacterRadius
}
