// Package event defines the arena's domain events, the per-tick batch,
// and the manager that accumulates them. Events are the single source
// of truth for state transitions: movement and turning carry deltas,
// never absolute values, so a consumer can rebuild absolute state by
// folding a round's batches starting from the RoundStarted snapshot.
package event

import (
	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

// Type identifies the kind of a game event.
type Type string

const (
	// TypeTickAdvanced records the start of a simulation step.
	TypeTickAdvanced Type = "tick.advanced"
	// TypeRoundStarted records a round start with initial placements.
	TypeRoundStarted Type = "round.started"
	// TypeRoundEnded records a round outcome: a winner or a draw.
	TypeRoundEnded Type = "round.ended"
	// TypeCharacterTurned records a body turn delta.
	TypeCharacterTurned Type = "character.turned"
	// TypeCharacterHeadTurned records a head turn delta.
	TypeCharacterHeadTurned Type = "character.head_turned"
	// TypeCharacterArmsTurned records an arms turn delta.
	TypeCharacterArmsTurned Type = "character.arms_turned"
	// TypeCharacterPositionUpdated records a movement delta.
	TypeCharacterPositionUpdated Type = "character.position_updated"
	// TypeCharacterHit records a projectile striking a character.
	TypeCharacterHit Type = "character.hit"
	// TypeCharacterDied records a character's hit points reaching zero.
	TypeCharacterDied Type = "character.died"
	// TypeAttackCreated records a projectile spawn.
	TypeAttackCreated Type = "attack.created"
	// TypeAttackAdvanced records a projectile moving one step.
	TypeAttackAdvanced Type = "attack.advanced"
	// TypeAttackMissed records a projectile leaving the arena.
	TypeAttackMissed Type = "attack.missed"
)

// CharacterID is the compact per-game identifier assigned to a
// character in join order. RoundStarted maps it back to full metadata.
type CharacterID uint8

// GameEvent is one element of the closed set of arena domain events.
type GameEvent interface {
	EventType() Type
}

// TickAdvanced opens a simulation step.
type TickAdvanced struct {
	Tick uint32 `json:"tick"`
}

// Spawn is one character's initial placement in a round.
type Spawn struct {
	Character CharacterID    `json:"character"`
	Position  geo.Point      `json:"position"`
	Meta      character.Meta `json:"meta"`
}

// RoundStarted opens a round and carries the starting snapshot every
// replay fold begins from.
type RoundStarted struct {
	Round  uint32  `json:"round"`
	Spawns []Spawn `json:"spawns"`
}

// RoundEnded closes a round. Winner is nil on a draw.
type RoundEnded struct {
	Winner *CharacterID `json:"winner,omitempty"`
}

// CharacterTurned records the applied body turn delta for one tick.
type CharacterTurned struct {
	Character CharacterID `json:"character"`
	Delta     float64     `json:"delta"`
}

// CharacterHeadTurned records the applied head turn delta.
type CharacterHeadTurned struct {
	Character CharacterID `json:"character"`
	Delta     float64     `json:"delta"`
}

// CharacterArmsTurned records the applied arms turn delta.
type CharacterArmsTurned struct {
	Character CharacterID `json:"character"`
	Delta     float64     `json:"delta"`
}

// CharacterPositionUpdated records the movement delta applied to a
// character. Every living character gets exactly one per tick, with a
// zero delta when movement was blocked or not requested.
type CharacterPositionUpdated struct {
	Character CharacterID `json:"character"`
	Delta     geo.Point   `json:"delta"`
}

// AttackCreated records a projectile spawn with its full initial state.
type AttackCreated struct {
	Attack   uint64      `json:"attack"`
	Owner    CharacterID `json:"owner"`
	Position geo.Point   `json:"position"`
	Heading  float64     `json:"heading"`
	Velocity float64     `json:"velocity"`
}

// AttackAdvanced records a projectile's new position.
type AttackAdvanced struct {
	Attack   uint64    `json:"attack"`
	Position geo.Point `json:"position"`
}

// AttackMissed records a projectile leaving the arena bounds.
type AttackMissed struct {
	Attack uint64 `json:"attack"`
}

// CharacterHit records a projectile striking a victim.
type CharacterHit struct {
	Attack   uint64      `json:"attack"`
	Owner    CharacterID `json:"owner"`
	Victim   CharacterID `json:"victim"`
	Position geo.Point   `json:"position"`
}

// CharacterDied records a victim's hit points reaching zero.
type CharacterDied struct {
	Character CharacterID `json:"character"`
}

func (TickAdvanced) EventType() Type             { return TypeTickAdvanced }
func (RoundStarted) EventType() Type             { return TypeRoundStarted }
func (RoundEnded) EventType() Type               { return TypeRoundEnded }
func (CharacterTurned) EventType() Type          { return TypeCharacterTurned }
func (CharacterHeadTurned) EventType() Type      { return TypeCharacterHeadTurned }
func (CharacterArmsTurned) EventType() Type      { return TypeCharacterArmsTurned }
func (CharacterPositionUpdated) EventType() Type { return TypeCharacterPositionUpdated }
func (CharacterHit) EventType() Type             { return TypeCharacterHit }
func (CharacterDied) EventType() Type            { return TypeCharacterDied }
func (AttackCreated) EventType() Type            { return TypeAttackCreated }
func (AttackAdvanced) EventType() Type           { return TypeAttackAdvanced }
func (AttackMissed) EventType() Type             { return TypeAttackMissed }

// StepEvents is the ordered batch of events produced by one tick. It
// is the unit of replay and of live-stream transport.
type StepEvents struct {
	Events []GameEvent
}

// Clone returns a batch sharing no slice storage with the receiver.
func (s StepEvents) Clone() StepEvents {
	events := make([]GameEvent, len(s.Events))
	copy(events, s.Events)
	return StepEvents{Events: events}
}
