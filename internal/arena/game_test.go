package arena

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

// scriptRuntime is a deterministic in-process stand-in for a script
// backend. It records every event it receives and answers with
// whatever onEvent decides.
type scriptRuntime struct {
	onEvent func(character.Event) ([]character.Command, error)
	events  []character.Event
	closed  bool
}

func (r *scriptRuntime) OnEvent(ev character.Event) ([]character.Command, error) {
	r.events = append(r.events, ev)
	if r.onEvent == nil {
		return nil, nil
	}
	return r.onEvent(ev)
}

func (r *scriptRuntime) Close() error {
	r.closed = true
	return nil
}

func testMeta(t *testing.T, name string) character.Meta {
	t.Helper()
	return character.Meta{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)),
		Name:       name,
		Version:    "1.0",
		Color:      character.DefaultColor,
		Entrypoint: name + ".lua",
	}
}

func newTestGame(t *testing.T, runtimes ...*scriptRuntime) (*Game, []event.CharacterID) {
	t.Helper()
	g := NewGame(event.Remember, 42)
	ids := make([]event.CharacterID, 0, len(runtimes))
	names := []string{"kai", "lloyd", "mira", "odo"}
	for i, r := range runtimes {
		id, err := g.AddCharacter(testMeta(t, names[i]), r)
		if err != nil {
			t.Fatalf("AddCharacter() error = %v", err)
		}
		ids = append(ids, id)
	}
	return g, ids
}

// eventsOfType filters one batch down to a single event type.
func eventsOfType[T event.GameEvent](batch event.StepEvents) []T {
	var out []T
	for _, ev := range batch.Events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func TestAddCharacterInstances(t *testing.T) {
	g := NewGame(event.Forget, 1)
	meta := testMeta(t, "kai")
	first, err := g.AddCharacter(meta, &scriptRuntime{})
	if err != nil {
		t.Fatalf("AddCharacter() error = %v", err)
	}
	second, err := g.AddCharacter(meta, &scriptRuntime{})
	if err != nil {
		t.Fatalf("AddCharacter() error = %v", err)
	}
	if first == second {
		t.Fatalf("ids must differ, both %d", first)
	}
	firstMeta, _ := g.Meta(first)
	secondMeta, _ := g.Meta(second)
	if got := firstMeta.DisplayName(); got != "kai_1.0" {
		t.Errorf("first DisplayName() = %q, want kai_1.0", got)
	}
	if got := secondMeta.DisplayName(); got != "kai_1.0 (2)" {
		t.Errorf("second DisplayName() = %q, want kai_1.0 (2)", got)
	}
}

func TestAddCharacterRequiresRuntime(t *testing.T) {
	g := NewGame(event.Forget, 1)
	_, err := g.AddCharacter(testMeta(t, "kai"), nil)
	var addErr *AddCharacterError
	if !errors.As(err, &addErr) {
		t.Fatalf("AddCharacter() error = %v, want AddCharacterError", err)
	}
	if addErr.Name != "kai" {
		t.Errorf("AddCharacterError.Name = %q, want kai", addErr.Name)
	}
}

func TestInitRoundPlacesCharactersApart(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	for i, id := range ids {
		s := g.slot(id)
		if !validPosition(s.state.Pos) {
			t.Errorf("character %d spawned at %v outside the arena", id, s.state.Pos)
		}
		for _, other := range ids[:i] {
			o := g.slot(other)
			if charactersCollide(s.state.Pos, o.state.Pos) {
				t.Errorf("characters %d and %d spawned overlapping", id, other)
			}
		}
	}
	spawns := eventsOfType[event.RoundStarted](g.events.Current())
	if len(spawns) != 1 || len(spawns[0].Spawns) != 3 {
		t.Fatalf("round start events = %v, want one with 3 spawns", spawns)
	}
}

func TestDeterministicHistories(t *testing.T) {
	script := func() *scriptRuntime {
		return &scriptRuntime{onEvent: func(ev character.Event) ([]character.Command, error) {
			switch ev.(type) {
			case character.Tick:
				return []character.Command{
					character.Move{Direction: character.Forward, Distance: 5},
					character.Attack{},
				}, nil
			case character.EnemySeen:
				return []character.Command{character.Turn{Angle: 0.3}}, nil
			}
			return nil, nil
		}}
	}

	run := func() []event.StepEvents {
		g, _ := newTestGame(t, script(), script())
		g.initRound(1)
		for i := 0; i < 50; i++ {
			if err := g.step(nil); err != nil {
				t.Fatalf("step() error = %v", err)
			}
		}
		return g.History()
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs with the same seed diverged")
	}
}

func TestOnePositionUpdatePerLivingCharacter(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[2]).state.HP = 0

	g.events.InitTick(g.tick)
	g.transitionCharacters()

	updates := eventsOfType[event.CharacterPositionUpdated](g.events.Current())
	if len(updates) != 2 {
		t.Fatalf("got %d position updates, want 2", len(updates))
	}
	for _, u := range updates {
		if u.Character == ids[2] {
			t.Fatalf("dead character %d moved", u.Character)
		}
	}
}

func TestTurnRatesAreClamped(t *testing.T) {
	turning := &scriptRuntime{onEvent: func(ev character.Event) ([]character.Command, error) {
		if _, ok := ev.(character.Tick); ok {
			return []character.Command{
				character.Turn{Angle: 10},
				character.TurnHead{Angle: 10},
				character.TurnArms{Angle: 10},
			}, nil
		}
		return nil, nil
	}}
	g, ids := newTestGame(t, turning, &scriptRuntime{})

	out := make(chan event.StepEvents, 4)
	g.initRound(1)
	for i := 0; i < 2; i++ {
		if err := g.step(out); err != nil {
			t.Fatalf("step() error = %v", err)
		}
	}
	<-out // first tick: intent not yet applied
	batch := <-out

	for _, turned := range eventsOfType[event.CharacterTurned](batch) {
		if turned.Character != ids[0] {
			continue
		}
		if turned.Delta != MaxTurnRate {
			t.Errorf("body turn delta = %v, want %v", turned.Delta, MaxTurnRate)
		}
	}
	for _, turned := range eventsOfType[event.CharacterHeadTurned](batch) {
		if turned.Character != ids[0] {
			continue
		}
		if turned.Delta != MaxHeadTurnRate {
			t.Errorf("head turn delta = %v, want %v", turned.Delta, MaxHeadTurnRate)
		}
	}
	for _, turned := range eventsOfType[event.CharacterArmsTurned](batch) {
		if turned.Character != ids[0] {
			continue
		}
		if turned.Delta != MaxArmsTurnRate {
			t.Errorf("arms turn delta = %v, want %v", turned.Delta, MaxArmsTurnRate)
		}
	}
	if got := g.slot(ids[0]).state.Heading; math.Abs(got-MaxTurnRate) > 1e-9 {
		t.Errorf("heading after one applied turn = %v, want %v", got, MaxTurnRate)
	}
}

func TestHeadTurnBoundedByAngleOfAction(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	s := g.slot(ids[0])
	s.state.HeadHeading = AngleOfAction - 0.05
	g.applyCommands(s, []character.Command{character.TurnHead{Angle: 1}})
	if got := s.intent.TurnHeadAngle; math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("head turn intent = %v, want clamp to remaining 0.05", got)
	}
}

func TestWallBlocksMovement(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	s := g.slot(ids[0])
	s.state.Pos = geo.Point{X: CharacterRadius, Y: 600}
	s.state.Heading = 0
	s.intent = character.Intent{Direction: character.Left, Distance: 1}
	g.slot(ids[1]).state.Pos = geo.Point{X: 800, Y: 600}

	g.events.InitTick(g.tick)
	g.transitionCharacters()

	for _, u := range eventsOfType[event.CharacterPositionUpdated](g.events.Current()) {
		if u.Character == ids[0] && !u.Delta.IsZero() {
			t.Fatalf("blocked character moved by %v", u.Delta)
		}
	}
	g.advance(g.events.Current().Events)
	if got := (geo.Point{X: CharacterRadius, Y: 600}); s.state.Pos != got {
		t.Fatalf("blocked character position = %v, want %v", s.state.Pos, got)
	}
	if got := s.intent.Distance; got != 1 {
		t.Fatalf("blocked character lost intent distance: %v", got)
	}
}

func TestCollidingPairStaysPut(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	left := g.slot(ids[0])
	right := g.slot(ids[1])
	left.state.Pos = geo.Point{X: 700, Y: 600}
	right.state.Pos = geo.Point{X: 700 + 2*CharacterRadius + 0.5, Y: 600}
	left.state.Heading = geo.HalfPi
	right.state.Heading = -geo.HalfPi
	left.intent = character.Intent{Distance: 1}
	right.intent = character.Intent{Distance: 1}

	g.events.InitTick(g.tick)
	g.transitionCharacters()

	for _, u := range eventsOfType[event.CharacterPositionUpdated](g.events.Current()) {
		if !u.Delta.IsZero() {
			t.Fatalf("character %d moved by %v into a collision", u.Character, u.Delta)
		}
	}
}

func TestVisionCone(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	observer := g.slot(ids[0])
	ahead := g.slot(ids[1])
	behind := g.slot(ids[2])
	observer.state.Pos = geo.Point{X: 800, Y: 600}
	observer.state.Heading = 0
	observer.state.HeadHeading = 0
	ahead.state.Pos = geo.Point{X: 800, Y: 400}
	behind.state.Pos = geo.Point{X: 800, Y: 800}

	g.runVision()

	seen := g.sightings[ids[0]]
	if len(seen) != 1 {
		t.Fatalf("observer sightings = %v, want exactly the character ahead", seen)
	}
	if seen[0].Name != ahead.meta.DisplayName() {
		t.Errorf("sighting = %q, want %q", seen[0].Name, ahead.meta.DisplayName())
	}
	if seen[0].Position != ahead.state.Pos {
		t.Errorf("sighting position = %v, want %v", seen[0].Position, ahead.state.Pos)
	}
	if len(g.sightings[ids[1]]) != 0 {
		t.Errorf("character ahead faces up with everyone behind it, saw %v", g.sightings[ids[1]])
	}
	if len(g.sightings[ids[2]]) != 2 {
		t.Errorf("rearmost character faces up and should see both others, saw %v", g.sightings[ids[2]])
	}
}

func TestDeadCharactersAreInvisible(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	observer := g.slot(ids[0])
	target := g.slot(ids[1])
	observer.state.Pos = geo.Point{X: 800, Y: 600}
	observer.state.Heading = 0
	target.state.Pos = geo.Point{X: 800, Y: 400}
	target.state.HP = 0

	g.runVision()

	if len(g.sightings[ids[0]]) != 0 {
		t.Fatalf("dead character was sighted: %v", g.sightings[ids[0]])
	}
}

func TestAttackCooldownGatesCreation(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	s := g.slot(ids[0])
	s.intent.Attack = true

	g.events.InitTick(g.tick)
	g.createAttacks()
	created := eventsOfType[event.AttackCreated](g.events.Current())
	if len(created) != 1 {
		t.Fatalf("got %d attacks, want 1", len(created))
	}
	g.advance(g.events.Current().Events)

	if s.state.AttackCooldown != AttackCooldown {
		t.Fatalf("cooldown = %d, want %d", s.state.AttackCooldown, AttackCooldown)
	}
	if s.intent.Attack {
		t.Fatal("attack intent must clear once the attack spawns")
	}

	s.intent.Attack = true
	g.events.InitTick(g.tick)
	g.createAttacks()
	if created := eventsOfType[event.AttackCreated](g.events.Current()); len(created) != 0 {
		t.Fatalf("attack created while cooling down: %v", created)
	}
}

func TestAttackLifecycle(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	owner := g.slot(ids[0])
	victim := g.slot(ids[1])
	owner.state.Pos = geo.Point{X: 800, Y: 600}
	victim.state.Pos = geo.Point{X: 800, Y: 500}

	// Projectile fired straight up from the owner.
	g.attacks = []attackState{{id: 7, owner: ids[0], pos: owner.state.Pos, heading: 0, velocity: AttackVelocity}}

	steps := 0
	for len(g.attacks) > 0 {
		steps++
		if steps > 100 {
			t.Fatal("attack never resolved")
		}
		g.events.InitTick(g.tick)
		g.transitionAttacks()
		g.advance(g.events.Current().Events)
	}

	if got := victim.state.HP; got != character.InitialHP-AttackDamage {
		t.Fatalf("victim HP = %v, want %v", got, character.InitialHP-AttackDamage)
	}
	if owner.state.HP != character.InitialHP {
		t.Fatal("owner must not be hit by its own attack")
	}
}

func TestAttackMissesAtWall(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[0]).state.Pos = geo.Point{X: 800, Y: 600}
	g.slot(ids[1]).state.Pos = geo.Point{X: 200, Y: 600}

	g.attacks = []attackState{{id: 3, owner: ids[0], pos: geo.Point{X: 800, Y: 1}, heading: 0, velocity: AttackVelocity}}

	g.events.InitTick(g.tick)
	g.transitionAttacks()

	missed := eventsOfType[event.AttackMissed](g.events.Current())
	if len(missed) != 1 || missed[0].Attack != 3 {
		t.Fatalf("missed events = %v, want attack 3", missed)
	}
	g.advance(g.events.Current().Events)
	if len(g.attacks) != 0 {
		t.Fatal("missed attack must be removed")
	}
}

func TestEquidistantHitPicksLowestID(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[0]).state.Pos = geo.Point{X: 200, Y: 200}
	g.slot(ids[1]).state.Pos = geo.Point{X: 790, Y: 600}
	g.slot(ids[2]).state.Pos = geo.Point{X: 810, Y: 600}

	g.attacks = []attackState{{id: 1, owner: ids[0], pos: geo.Point{X: 800, Y: 600}, heading: 0, velocity: 0}}

	g.events.InitTick(g.tick)
	g.transitionAttacks()

	hits := eventsOfType[event.CharacterHit](g.events.Current())
	if len(hits) != 1 {
		t.Fatalf("hits = %v, want one", hits)
	}
	if hits[0].Victim != ids[1] {
		t.Fatalf("victim = %d, want lowest id %d", hits[0].Victim, ids[1])
	}
}

func TestSimultaneousHitsEmitOneDeath(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[0]).state.Pos = geo.Point{X: 200, Y: 200}
	g.slot(ids[1]).state.Pos = geo.Point{X: 200, Y: 1000}
	victim := g.slot(ids[2])
	victim.state.Pos = geo.Point{X: 800, Y: 600}
	victim.state.HP = 2 * AttackDamage

	// Two projectiles from different owners strike the victim in the
	// same tick; together they fold HP to zero.
	g.attacks = []attackState{
		{id: 1, owner: ids[0], pos: victim.state.Pos, heading: 0, velocity: 0},
		{id: 2, owner: ids[1], pos: victim.state.Pos, heading: 0, velocity: 0},
	}

	g.events.InitTick(g.tick)
	g.transitionAttacks()

	hits := eventsOfType[event.CharacterHit](g.events.Current())
	if len(hits) != 2 {
		t.Fatalf("hits = %v, want two", hits)
	}
	died := eventsOfType[event.CharacterDied](g.events.Current())
	if len(died) != 1 || died[0].Character != ids[2] {
		t.Fatalf("died events = %v, want one for %d", died, ids[2])
	}

	g.advance(g.events.Current().Events)
	if victim.state.HP != 0 {
		t.Fatalf("victim HP = %v, want 0", victim.state.HP)
	}
	if victim.state.Alive() {
		t.Fatal("victim must be dead after both hits")
	}
}

func TestRoundEndsWhenOneRemains(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[1]).state.HP = 0

	if err := g.step(nil); err != nil {
		t.Fatalf("step() error = %v", err)
	}

	state := g.RoundState()
	if state.Outcome != Won || state.Winner != ids[0] {
		t.Fatalf("round state = %+v, want won by %d", state, ids[0])
	}
	stats, _ := g.Stats(ids[0])
	if stats.RoundsWon != 1 {
		t.Fatalf("winner RoundsWon = %d, want 1", stats.RoundsWon)
	}
}

func TestRoundDrawnWhenNobodyRemains(t *testing.T) {
	g, ids := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	g.initRound(1)
	g.slot(ids[0]).state.HP = 0
	g.slot(ids[1]).state.HP = 0

	if err := g.step(nil); err != nil {
		t.Fatalf("step() error = %v", err)
	}
	if got := g.RoundState().Outcome; got != Drawn {
		t.Fatalf("outcome = %v, want Drawn", got)
	}
}

func TestProjectionsReachBothParties(t *testing.T) {
	attacker := &scriptRuntime{}
	victimRuntime := &scriptRuntime{}
	g, ids := newTestGame(t, attacker, victimRuntime)
	g.initRound(1)
	g.slot(ids[0]).state.Pos = geo.Point{X: 800, Y: 600}
	g.slot(ids[1]).state.Pos = geo.Point{X: 800, Y: 500}
	g.attacks = []attackState{{id: 1, owner: ids[0], pos: geo.Point{X: 800, Y: 510}, heading: 0, velocity: AttackVelocity}}

	if err := g.step(nil); err != nil {
		t.Fatalf("step() error = %v", err)
	}

	var sawHit bool
	for _, ev := range attacker.events {
		if hit, ok := ev.(character.AttackHit); ok {
			sawHit = true
			if hit.Victim.Name != "lloyd" {
				t.Errorf("AttackHit victim = %q, want lloyd", hit.Victim.Name)
			}
		}
	}
	if !sawHit {
		t.Error("attacker never saw its hit")
	}

	var wasHit bool
	for _, ev := range victimRuntime.events {
		if hit, ok := ev.(character.HitBy); ok {
			wasHit = true
			if hit.Attacker.Name != "kai" {
				t.Errorf("HitBy attacker = %q, want kai", hit.Attacker.Name)
			}
		}
	}
	if !wasHit {
		t.Error("victim never learned it was hit")
	}
}

func TestDeathProjections(t *testing.T) {
	dying := &scriptRuntime{}
	witness := &scriptRuntime{}
	g, ids := newTestGame(t, dying, witness)
	g.initRound(1)
	g.slot(ids[0]).state.Pos = geo.Point{X: 800, Y: 600}
	g.slot(ids[0]).state.HP = AttackDamage
	g.slot(ids[1]).state.Pos = geo.Point{X: 200, Y: 200}
	g.attacks = []attackState{{id: 1, owner: ids[1], pos: geo.Point{X: 800, Y: 610}, heading: 0, velocity: AttackVelocity}}

	if err := g.step(nil); err != nil {
		t.Fatalf("step() error = %v", err)
	}

	var died bool
	for _, ev := range dying.events {
		if _, ok := ev.(character.Death); ok {
			died = true
		}
	}
	if !died {
		t.Error("dying character never received its death")
	}
	var witnessed bool
	for _, ev := range witness.events {
		if d, ok := ev.(character.EnemyDied); ok {
			witnessed = true
			if d.Name != "kai_1.0" {
				t.Errorf("EnemyDied name = %q, want kai_1.0", d.Name)
			}
		}
	}
	if !witnessed {
		t.Error("witness never learned about the death")
	}
}

func TestRoundOutcomeProjections(t *testing.T) {
	winner := &scriptRuntime{}
	loser := &scriptRuntime{}
	g, ids := newTestGame(t, winner, loser)
	g.initRound(1)
	g.slot(ids[1]).state.HP = 0

	if err := g.step(nil); err != nil {
		t.Fatalf("step() error = %v", err)
	}

	var won, ended bool
	for _, ev := range winner.events {
		switch ev.(type) {
		case character.RoundWon:
			won = true
		case character.RoundEnded:
			ended = true
		}
	}
	if !won || !ended {
		t.Errorf("winner projections: won=%v ended=%v, want both", won, ended)
	}
	for _, ev := range loser.events {
		if _, ok := ev.(character.RoundWon); ok {
			t.Error("loser received a round-won projection")
		}
	}
}

func TestRuntimeErrorAbortsGame(t *testing.T) {
	failing := &scriptRuntime{onEvent: func(character.Event) ([]character.Command, error) {
		return nil, errors.New("script exploded")
	}}
	g, _ := newTestGame(t, failing, &scriptRuntime{})
	g.initRound(1)

	err := g.step(nil)
	var gameErr *GameError
	if !errors.As(err, &gameErr) {
		t.Fatalf("step() error = %v, want GameError", err)
	}
	var eventErr *character.EventError
	if !errors.As(err, &eventErr) {
		t.Fatalf("step() error = %v, want wrapped EventError", err)
	}
	if eventErr.Character != "kai_1.0" {
		t.Errorf("EventError.Character = %q, want kai_1.0", eventErr.Character)
	}
}

func TestRunPlaysFullGame(t *testing.T) {
	// The aggressor holds still and fires every time its cooldown
	// allows; the pacifist does nothing. Positions are forced onto a
	// vertical line on the first round-started projection so the fight
	// always resolves.
	aggressor := &scriptRuntime{onEvent: func(ev character.Event) ([]character.Command, error) {
		if _, ok := ev.(character.Tick); ok {
			return []character.Command{character.Attack{}}, nil
		}
		return nil, nil
	}}
	pacifist := &scriptRuntime{}
	g, ids := newTestGame(t, aggressor, pacifist)

	g.initRound(1)
	shooter := g.slot(ids[0])
	target := g.slot(ids[1])
	shooter.state.Pos = geo.Point{X: 800, Y: 600}
	shooter.state.Heading = 0
	target.state.Pos = geo.Point{X: 800, Y: 400}

	for i := 0; i < 2000; i++ {
		if g.RoundState().Outcome != Ongoing {
			break
		}
		if err := g.step(nil); err != nil {
			t.Fatalf("step() error = %v", err)
		}
	}

	state := g.RoundState()
	if state.Outcome != Won || state.Winner != ids[0] {
		t.Fatalf("round state = %+v, want won by %d", state, ids[0])
	}
	if target.state.HP != 0 {
		t.Fatalf("target HP = %v, want 0", target.state.HP)
	}
	stats, _ := g.Stats(ids[0])
	if stats.RoundsWon != 1 {
		t.Fatalf("RoundsWon = %d, want 1", stats.RoundsWon)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	g, _ := newTestGame(t, &scriptRuntime{}, &scriptRuntime{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan event.StepEvents, 1)
	if err := g.Run(ctx, 5, 0, out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, open := <-out; open {
		t.Fatal("out channel must be closed after Run returns")
	}
}

func TestCloseReleasesRuntimes(t *testing.T) {
	first := &scriptRuntime{}
	second := &scriptRuntime{}
	g, _ := newTestGame(t, first, second)
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !first.closed || !second.closed {
		t.Fatal("Close() must reach every runtime")
	}
}
