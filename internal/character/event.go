package character

import "github.com/luarena/luarena/internal/geo"

// Event is the character-facing projection of what happened in the
// arena. Runtimes receive these and answer with commands; every kind a
// script does not handle is silently ignored.
type Event interface {
	isEvent()
}

// Tick tells the character a simulation step happened and hands it a
// snapshot of its own state.
type Tick struct {
	Tick  uint32
	State Snapshot
}

// RoundStarted announces a new round.
type RoundStarted struct {
	Round uint32
}

// RoundEnded announces the end of the round. Winner is nil on a draw.
type RoundEnded struct {
	Winner *Meta
}

// RoundWon is delivered only to the round's winner.
type RoundWon struct{}

// RoundDrawn is delivered to every character when nobody survived.
type RoundDrawn struct{}

// EnemySeen reports another living character inside the vision cone.
type EnemySeen struct {
	Name     string
	Position geo.Point
}

// EnemyDied reports the death of another character.
type EnemyDied struct {
	Name string
}

// HitBy reports being struck by an attacker's projectile.
type HitBy struct {
	Attacker Meta
}

// AttackHit reports that the character's own projectile struck a victim.
type AttackHit struct {
	Victim   Meta
	Position geo.Point
}

// Death tells the character it just died.
type Death struct{}

func (Tick) isEvent()         {}
func (RoundStarted) isEvent() {}
func (RoundEnded) isEvent()   {}
func (RoundWon) isEvent()     {}
func (RoundDrawn) isEvent()   {}
func (EnemySeen) isEvent()    {}
func (EnemyDied) isEvent()    {}
func (HitBy) isEvent()        {}
func (AttackHit) isEvent()    {}
func (Death) isEvent()        {}
