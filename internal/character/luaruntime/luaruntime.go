// Package luaruntime hosts a character script in an embedded Lua
// interpreter. The script is evaluated once at load time and must
// return a table of event handlers; handlers the script does not
// define are skipped. The script gets a `me` table with command
// constructors and a log function, and a `utils` table with angle
// helpers — never a live reference into game-owned state.
package luaruntime

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Shopify/go-lua"

	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

const handlersKey = "luarena.handlers"

// Runtime implements character.Runtime on top of a Lua state.
type Runtime struct {
	state *lua.State
	name  string
}

// Load reads the entrypoint script from a character directory.
func Load(dir string, meta character.Meta) (*Runtime, error) {
	path := filepath.Join(dir, meta.Entrypoint)
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(string(code), meta.DisplayName())
}

// New evaluates a script and captures the handler table it returns.
func New(code, displayName string) (*Runtime, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	r := &Runtime{state: l, name: displayName}
	r.registerLibrary()

	if err := lua.LoadString(l, code); err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		l.SetTop(0)
		return nil, fmt.Errorf("run script: %w", err)
	}
	if l.TypeOf(-1) != lua.TypeTable {
		l.SetTop(0)
		return nil, fmt.Errorf("script must return a handler table")
	}
	l.SetField(lua.RegistryIndex, handlersKey)
	return r, nil
}

// Close is a no-op: the interpreter state is garbage collected.
func (r *Runtime) Close() error { return nil }

// OnEvent translates an event into its handler call. Unhandled event
// kinds produce no commands.
func (r *Runtime) OnEvent(ev character.Event) ([]character.Command, error) {
	switch ev := ev.(type) {
	case character.Tick:
		return r.call("on_tick", func(l *lua.State) int {
			l.PushInteger(int(ev.Tick))
			pushSnapshot(l, ev.State)
			return 2
		})
	case character.RoundStarted:
		return r.call("on_round_started", func(l *lua.State) int {
			l.PushInteger(int(ev.Round))
			return 1
		})
	case character.RoundEnded:
		return r.call("on_round_ended", func(l *lua.State) int {
			if ev.Winner == nil {
				l.PushNil()
			} else {
				l.PushString(ev.Winner.DisplayName())
			}
			return 1
		})
	case character.RoundWon:
		return r.call("on_round_won", nil)
	case character.RoundDrawn:
		return r.call("on_round_drawn", nil)
	case character.EnemySeen:
		return r.call("on_enemy_seen", func(l *lua.State) int {
			l.PushString(ev.Name)
			pushPoint(l, ev.Position)
			return 2
		})
	case character.EnemyDied:
		return r.call("on_enemy_died", func(l *lua.State) int {
			l.PushString(ev.Name)
			return 1
		})
	case character.HitBy:
		return r.call("on_hit_by", func(l *lua.State) int {
			l.PushString(ev.Attacker.DisplayName())
			return 1
		})
	case character.AttackHit:
		return r.call("on_attack_hit", func(l *lua.State) int {
			l.PushString(ev.Victim.DisplayName())
			pushPoint(l, ev.Position)
			return 2
		})
	case character.Death:
		return r.call("on_death", nil)
	default:
		return nil, nil
	}
}

// call invokes one handler if the script defines it. The stack is
// reset afterwards so repeated calls stay balanced.
func (r *Runtime) call(name string, pushArgs func(*lua.State) int) ([]character.Command, error) {
	l := r.state
	defer l.SetTop(0)

	l.Field(lua.RegistryIndex, handlersKey)
	l.Field(-1, name)
	if l.TypeOf(-1) != lua.TypeFunction {
		return nil, nil
	}
	argCount := 0
	if pushArgs != nil {
		argCount = pushArgs(l)
	}
	if err := l.ProtectedCall(argCount, 1, 0); err != nil {
		return nil, &character.EventError{Character: r.name, Cause: err}
	}
	commands, err := popCommands(l)
	if err != nil {
		return nil, &character.EventError{Character: r.name, Cause: err}
	}
	return commands, nil
}

// popCommands reads the handler result at the top of the stack: nil
// for no commands, or an array of tagged command tables.
func popCommands(l *lua.State) ([]character.Command, error) {
	switch l.TypeOf(-1) {
	case lua.TypeNil:
		return nil, nil
	case lua.TypeTable:
	default:
		return nil, fmt.Errorf("handler must return a command list or nil")
	}

	var commands []character.Command
	for i := 1; ; i++ {
		l.RawGetInt(-1, i)
		if l.TypeOf(-1) == lua.TypeNil {
			l.Pop(1)
			break
		}
		cmd, err := toCommand(l)
		l.Pop(1)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// toCommand parses the tagged command table at the top of the stack.
func toCommand(l *lua.State) (character.Command, error) {
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("command must be a table")
	}
	tag, ok := stringField(l, "tag")
	if !ok {
		return nil, fmt.Errorf("command is missing 'tag'")
	}
	switch tag {
	case "move":
		distance, ok := numberField(l, "distance")
		if !ok {
			return nil, fmt.Errorf("move command is missing 'distance'")
		}
		raw, ok := stringField(l, "direction")
		if !ok {
			return nil, fmt.Errorf("move command is missing 'direction'")
		}
		direction, err := character.ParseDirection(raw)
		if err != nil {
			return nil, err
		}
		return character.Move{Direction: direction, Distance: distance}, nil
	case "attack":
		return character.Attack{}, nil
	case "turn":
		return turnCommand(l, tag, func(angle float64) character.Command { return character.Turn{Angle: angle} })
	case "turn_head":
		return turnCommand(l, tag, func(angle float64) character.Command { return character.TurnHead{Angle: angle} })
	case "turn_arms":
		return turnCommand(l, tag, func(angle float64) character.Command { return character.TurnArms{Angle: angle} })
	default:
		return nil, fmt.Errorf("invalid command tag %q", tag)
	}
}

func turnCommand(l *lua.State, tag string, build func(float64) character.Command) (character.Command, error) {
	angle, ok := numberField(l, "angle")
	if !ok {
		return nil, fmt.Errorf("%s command is missing 'angle'", tag)
	}
	return build(angle), nil
}

func stringField(l *lua.State, name string) (string, bool) {
	l.Field(-1, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return "", false
	}
	return l.ToString(-1)
}

func numberField(l *lua.State, name string) (float64, bool) {
	l.Field(-1, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeNumber {
		return 0, false
	}
	return l.ToNumber(-1)
}

func pushSnapshot(l *lua.State, s character.Snapshot) {
	l.NewTable()
	setNumber := func(name string, value float64) {
		l.PushNumber(value)
		l.SetField(-2, name)
	}
	setNumber("x", s.X)
	setNumber("y", s.Y)
	setNumber("hp", s.HP)
	setNumber("heading", s.Heading)
	setNumber("head_heading", s.HeadHeading)
	setNumber("arms_heading", s.ArmsHeading)
	setNumber("attack_cooldown", float64(s.AttackCooldown))
	setNumber("turn_remaining", s.TurnRemaining)
	setNumber("head_turn_remaining", s.HeadTurnRemaining)
	setNumber("arms_turn_remaining", s.ArmsTurnRemaining)
}

func pushPoint(l *lua.State, p geo.Point) {
	l.NewTable()
	l.PushNumber(p.X)
	l.SetField(-2, "x")
	l.PushNumber(p.Y)
	l.SetField(-2, "y")
}

// pushCommand builds the tagged table for a command constructor.
func pushMoveCommand(l *lua.State, direction character.Direction) int {
	distance := lua.CheckNumber(l, 1)
	l.NewTable()
	l.PushString("move")
	l.SetField(-2, "tag")
	l.PushNumber(distance)
	l.SetField(-2, "distance")
	l.PushString(direction.String())
	l.SetField(-2, "direction")
	return 1
}

func pushAngleCommand(l *lua.State, tag string) int {
	angle := lua.CheckNumber(l, 1)
	l.NewTable()
	l.PushString(tag)
	l.SetField(-2, "tag")
	l.PushNumber(angle)
	l.SetField(-2, "angle")
	return 1
}

// registerLibrary installs the `me` and `utils` globals.
func (r *Runtime) registerLibrary() {
	l := r.state
	name := r.name

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "log", Function: func(l *lua.State) int {
			character.LogMessage(name, lua.CheckString(l, 1))
			return 0
		}},
		{Name: "move", Function: func(l *lua.State) int {
			return pushMoveCommand(l, character.Forward)
		}},
		{Name: "move_backward", Function: func(l *lua.State) int {
			return pushMoveCommand(l, character.Backward)
		}},
		{Name: "move_left", Function: func(l *lua.State) int {
			return pushMoveCommand(l, character.Left)
		}},
		{Name: "move_right", Function: func(l *lua.State) int {
			return pushMoveCommand(l, character.Right)
		}},
		{Name: "attack", Function: func(l *lua.State) int {
			l.NewTable()
			l.PushString("attack")
			l.SetField(-2, "tag")
			return 1
		}},
		{Name: "turn", Function: func(l *lua.State) int {
			return pushAngleCommand(l, "turn")
		}},
		{Name: "turn_head", Function: func(l *lua.State) int {
			return pushAngleCommand(l, "turn_head")
		}},
		{Name: "turn_arms", Function: func(l *lua.State) int {
			return pushAngleCommand(l, "turn_arms")
		}},
	}, 0)
	l.SetGlobal("me")

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "normalize_absolute_angle", Function: func(l *lua.State) int {
			l.PushNumber(geo.NormalizeAbsoluteAngle(lua.CheckNumber(l, 1)))
			return 1
		}},
		{Name: "normalize_relative_angle", Function: func(l *lua.State) int {
			l.PushNumber(geo.NormalizeRelativeAngle(lua.CheckNumber(l, 1)))
			return 1
		}},
		{Name: "to_radians", Function: func(l *lua.State) int {
			l.PushNumber(lua.CheckNumber(l, 1) * math.Pi / 180)
			return 1
		}},
		{Name: "from_radians", Function: func(l *lua.State) int {
			l.PushNumber(lua.CheckNumber(l, 1) * 180 / math.Pi)
			return 1
		}},
	}, 0)
	l.SetGlobal("utils")
}
