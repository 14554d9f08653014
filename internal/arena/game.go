// Package arena implements the deterministic, event-sourced battle
// simulation: per-tick vision, physics, and attack resolution over
// characters driven by pluggable script runtimes. Stages only record
// events; authoritative state changes happen in the advancement step
// that folds the recorded batch.
package arena

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

// RoundOutcome describes how a round finished.
type RoundOutcome int

const (
	// Ongoing means the round has not finished.
	Ongoing RoundOutcome = iota
	// Won means exactly one character survived.
	Won
	// Drawn means nobody survived.
	Drawn
)

// RoundState is the terminal-once round status.
type RoundState struct {
	Outcome RoundOutcome
	Winner  event.CharacterID // valid only when Outcome is Won
}

// slot binds one character's identity, authoritative state, pending
// intent, and runtime. Slots live in join order, which is the stable
// iteration order for every stage.
type slot struct {
	id      event.CharacterID
	meta    character.Meta
	state   *character.State
	intent  character.Intent
	runtime character.Runtime
}

// Game owns all character state and orchestrates rounds and ticks. It
// is single-threaded: one goroutine drives Run, and script runtimes
// only ever see read-only snapshots.
type Game struct {
	tick       uint32
	round      uint32
	roundState RoundState

	slots     []*slot
	instances map[uuid.UUID]uint8
	attacks   []attackState
	attackIDs uint64

	events    *event.Manager
	rng       *rand.Rand
	sightings map[event.CharacterID][]character.EnemySeen
}

type attackState struct {
	id       uint64
	owner    event.CharacterID
	pos      geo.Point
	heading  float64
	velocity float64
}

// NewGame creates a game with an explicit event-retention mode and a
// deterministic random source for spawn placement.
func NewGame(mode event.Mode, seed int64) *Game {
	return &Game{
		events:    event.NewManager(mode),
		rng:       rand.New(rand.NewSource(seed)),
		instances: make(map[uuid.UUID]uint8),
	}
}

// AddCharacter registers a character and its runtime. The instance
// counter disambiguates several copies of the same script.
func (g *Game) AddCharacter(meta character.Meta, runtime character.Runtime) (event.CharacterID, error) {
	if len(g.slots) >= 255 {
		return 0, &AddCharacterError{Name: meta.Name, Cause: fmt.Errorf("character limit reached")}
	}
	if runtime == nil {
		return 0, &AddCharacterError{Name: meta.Name, Cause: fmt.Errorf("runtime is required")}
	}
	g.instances[meta.ID]++
	meta.Instance = g.instances[meta.ID]
	id := event.CharacterID(len(g.slots))
	g.slots = append(g.slots, &slot{
		id:      id,
		meta:    meta,
		state:   character.NewState(),
		runtime: runtime,
	})
	return id, nil
}

// Close releases every character runtime.
func (g *Game) Close() error {
	var firstErr error
	for _, s := range g.slots {
		if err := s.runtime.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// History exposes the recorded batches, for writing a replay at game
// end. Only meaningful in Remember mode.
func (g *Game) History() []event.StepEvents {
	return g.events.History()
}

// RoundState returns the current round status.
func (g *Game) RoundState() RoundState {
	return g.roundState
}

// Stats returns the persistent win statistics of one character.
func (g *Game) Stats(id event.CharacterID) (character.Stats, bool) {
	s := g.slot(id)
	if s == nil {
		return character.Stats{}, false
	}
	return s.state.Stats, true
}

// Meta returns the metadata of one character, including its assigned
// instance counter.
func (g *Game) Meta(id event.CharacterID) (character.Meta, bool) {
	s := g.slot(id)
	if s == nil {
		return character.Meta{}, false
	}
	return s.meta, true
}

func (g *Game) slot(id event.CharacterID) *slot {
	if int(id) >= len(g.slots) {
		return nil
	}
	return g.slots[id]
}

func (g *Game) livingSlots() []*slot {
	living := make([]*slot, 0, len(g.slots))
	for _, s := range g.slots {
		if s.state.Alive() {
			living = append(living, s)
		}
	}
	return living
}

func (g *Game) nextAttackID() uint64 {
	id := g.attackIDs
	g.attackIDs++
	return id
}

// initRound resets per-round state and seeds the event batch. Spawn
// positions are randomized but collision-free.
func (g *Game) initRound(round uint32) {
	g.tick = 0
	g.round = round
	g.roundState = RoundState{Outcome: Ongoing}
	g.attacks = nil
	g.sightings = nil

	spawns := make([]event.Spawn, 0, len(g.slots))
	positions := make([]geo.Point, 0, len(g.slots))
	for _, s := range g.slots {
		pos := g.spawnPosition(positions)
		positions = append(positions, pos)
		s.state.Reset(pos)
		s.intent = character.Intent{}
		spawns = append(spawns, event.Spawn{Character: s.id, Position: pos, Meta: s.meta})
	}
	g.events.InitRound(round, spawns)
}

// spawnPosition draws positions until one clear of every earlier
// placement is found. The attempt cap only matters for pathologically
// crowded arenas; the last draw is used when it is reached.
func (g *Game) spawnPosition(taken []geo.Point) geo.Point {
	var pos geo.Point
	for attempt := 0; attempt < 1000; attempt++ {
		pos = geo.Point{
			X: spawnMargin + g.rng.Float64()*(ArenaWidth-2*spawnMargin),
			Y: spawnMargin + g.rng.Float64()*(ArenaHeight-2*spawnMargin),
		}
		clear := true
		for _, other := range taken {
			if pos.Dist(other) <= 2*CharacterRadius {
				clear = false
				break
			}
		}
		if clear {
			break
		}
	}
	return pos
}

// checkRoundEnd records the round outcome once at most one character
// is left standing.
func (g *Game) checkRoundEnd() {
	living := g.livingSlots()
	switch len(living) {
	case 0:
		g.events.Record(event.RoundEnded{})
	case 1:
		winner := living[0].id
		g.events.Record(event.RoundEnded{Winner: &winner})
	}
}
