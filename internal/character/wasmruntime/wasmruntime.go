// Package wasmruntime hosts a character compiled to WebAssembly.
//
// The guest module exports two functions besides its linear memory:
//
//	allocate(size u32) -> ptr u32
//	on_event(ptr u32, len u32) -> u64
//
// Events are passed as a JSON envelope written into guest memory at an
// address obtained from allocate. on_event returns the response buffer
// packed as ptr<<32|len; the buffer holds a JSON array of commands and
// may be empty when the guest does not handle the event. The host
// provides a "luarena" module with a log(ptr, len) import.
package wasmruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

const hostModule = "luarena"

// Runtime implements character.Runtime on top of a wazero instance.
type Runtime struct {
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	alloc   api.Function
	onEvent api.Function
	name    string
}

// Load compiles and instantiates the entrypoint module from a
// character directory.
func Load(ctx context.Context, dir string, meta character.Meta) (*Runtime, error) {
	path := filepath.Join(dir, meta.Entrypoint)
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(ctx, code, meta.DisplayName())
}

// New instantiates a compiled module and resolves its exports.
func New(ctx context.Context, code []byte, displayName string) (*Runtime, error) {
	r := wazero.NewRuntime(ctx)

	_, err := r.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, size uint32) {
			msg, ok := m.Memory().Read(ptr, size)
			if !ok {
				return
			}
			character.LogMessage(displayName, string(msg))
		}).
		Export("log").
		Instantiate(ctx)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	module, err := r.Instantiate(ctx, code)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	alloc := module.ExportedFunction("allocate")
	onEvent := module.ExportedFunction("on_event")
	if alloc == nil || onEvent == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("module must export allocate and on_event")
	}

	return &Runtime{
		ctx:     ctx,
		runtime: r,
		module:  module,
		alloc:   alloc,
		onEvent: onEvent,
		name:    displayName,
	}, nil
}

// Close releases the wazero runtime and all instantiated modules.
func (r *Runtime) Close() error {
	return r.runtime.Close(r.ctx)
}

// OnEvent serializes the event into guest memory and parses the
// commands the guest answers with.
func (r *Runtime) OnEvent(ev character.Event) ([]character.Command, error) {
	payload, err := json.Marshal(newEnvelope(ev))
	if err != nil {
		return nil, &character.EventError{Character: r.name, Cause: err}
	}

	results, err := r.alloc.Call(r.ctx, uint64(len(payload)))
	if err != nil {
		return nil, &character.EventError{Character: r.name, Cause: fmt.Errorf("allocate: %w", err)}
	}
	ptr := uint32(results[0])
	if !r.module.Memory().Write(ptr, payload) {
		return nil, &character.EventError{Character: r.name, Cause: fmt.Errorf("write event at %d out of range", ptr)}
	}

	results, err = r.onEvent.Call(r.ctx, uint64(ptr), uint64(len(payload)))
	if err != nil {
		return nil, &character.EventError{Character: r.name, Cause: fmt.Errorf("on_event: %w", err)}
	}
	packed := results[0]
	respPtr := uint32(packed >> 32)
	respLen := uint32(packed)
	if respLen == 0 {
		return nil, nil
	}
	resp, ok := r.module.Memory().Read(respPtr, respLen)
	if !ok {
		return nil, &character.EventError{Character: r.name, Cause: fmt.Errorf("read response at %d out of range", respPtr)}
	}

	commands, err := parseCommands(resp)
	if err != nil {
		return nil, &character.EventError{Character: r.name, Cause: err}
	}
	return commands, nil
}

// envelope is the wire form of one event.
type envelope struct {
	Kind     string        `json:"kind"`
	Tick     uint32        `json:"tick,omitempty"`
	Round    uint32        `json:"round,omitempty"`
	Name     string        `json:"name,omitempty"`
	Position *wirePoint    `json:"position,omitempty"`
	State    *wireSnapshot `json:"state,omitempty"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireSnapshot = character.Snapshot

func newEnvelope(ev character.Event) envelope {
	switch ev := ev.(type) {
	case character.Tick:
		state := ev.State
		return envelope{Kind: "tick", Tick: ev.Tick, State: &state}
	case character.RoundStarted:
		return envelope{Kind: "round_started", Round: ev.Round}
	case character.RoundEnded:
		e := envelope{Kind: "round_ended"}
		if ev.Winner != nil {
			e.Name = ev.Winner.DisplayName()
		}
		return e
	case character.RoundWon:
		return envelope{Kind: "round_won"}
	case character.RoundDrawn:
		return envelope{Kind: "round_drawn"}
	case character.EnemySeen:
		return envelope{Kind: "enemy_seen", Name: ev.Name, Position: toWirePoint(ev.Position)}
	case character.EnemyDied:
		return envelope{Kind: "enemy_died", Name: ev.Name}
	case character.HitBy:
		return envelope{Kind: "hit_by", Name: ev.Attacker.DisplayName()}
	case character.AttackHit:
		return envelope{Kind: "attack_hit", Name: ev.Victim.DisplayName(), Position: toWirePoint(ev.Position)}
	case character.Death:
		return envelope{Kind: "death"}
	default:
		return envelope{Kind: "unknown"}
	}
}

func toWirePoint(p geo.Point) *wirePoint {
	return &wirePoint{X: p.X, Y: p.Y}
}

// wireCommand is the wire form of one command.
type wireCommand struct {
	Tag       string  `json:"tag"`
	Distance  float64 `json:"distance,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Angle     float64 `json:"angle,omitempty"`
}

func parseCommands(data []byte) ([]character.Command, error) {
	var wire []wireCommand
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	commands := make([]character.Command, 0, len(wire))
	for _, w := range wire {
		switch w.Tag {
		case "move":
			direction, err := character.ParseDirection(w.Direction)
			if err != nil {
				return nil, err
			}
			commands = append(commands, character.Move{Direction: direction, Distance: w.Distance})
		case "attack":
			commands = append(commands, character.Attack{})
		case "turn":
			commands = append(commands, character.Turn{Angle: w.Angle})
		case "turn_head":
			commands = append(commands, character.TurnHead{Angle: w.Angle})
		case "turn_arms":
			commands = append(commands, character.TurnArms{Angle: w.Angle})
		default:
			return nil, fmt.Errorf("invalid command tag %q", w.Tag)
		}
	}
	if len(commands) == 0 {
		return nil, nil
	}
	return commands, nil
}
