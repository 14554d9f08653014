package character

import (
	"fmt"
	"sort"
)

// Direction is a movement direction relative to the body heading.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses the wire spelling of a movement direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return Forward, fmt.Errorf("invalid direction %q", s)
	}
}

// Command is a single instruction returned by a runtime in response to
// an event. Each variant has a fixed priority index so that a batch of
// commands from one response applies in a deterministic order.
type Command interface {
	// Priority is the application order index: Move=0, Attack=1,
	// Turn=2, TurnHead=3, TurnArms=4.
	Priority() int
}

// Move requests movement in a direction relative to the body heading.
type Move struct {
	Direction Direction
	Distance  float64
}

// Attack requests a projectile launch along the arms heading.
type Attack struct{}

// Turn requests a body turn by a relative angle.
type Turn struct {
	Angle float64
}

// TurnHead requests a head turn by a relative angle.
type TurnHead struct {
	Angle float64
}

// TurnArms requests an arms turn by a relative angle.
type TurnArms struct {
	Angle float64
}

func (Move) Priority() int     { return 0 }
func (Attack) Priority() int   { return 1 }
func (Turn) Priority() int     { return 2 }
func (TurnHead) Priority() int { return 3 }
func (TurnArms) Priority() int { return 4 }

// SortCommands orders commands by priority index, keeping the relative
// order of commands with equal priority.
func SortCommands(commands []Command) {
	sort.SliceStable(commands, func(i, j int) bool {
		return commands[i].Priority() < commands[j].Priority()
	})
}
