package arena

import (
	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/character"
)

// dispatch projects the tick's events into each character's view,
// delivers them through the runtime adapter, and translates the
// returned commands into updated intent. Dead characters still receive
// their projections (death, round outcomes); only living observers get
// sightings.
func (g *Game) dispatch(events []event.GameEvent) error {
	for _, s := range g.slots {
		charEvents := g.projectEvents(s, events)
		charEvents = append(charEvents, g.sightingEvents(s)...)

		var commands []character.Command
		for _, ev := range charEvents {
			cmds, err := s.runtime.OnEvent(ev)
			if err != nil {
				return &GameError{Cause: asEventError(s, err)}
			}
			commands = append(commands, cmds...)
		}
		character.SortCommands(commands)
		g.applyCommands(s, commands)
	}
	return nil
}

func asEventError(s *slot, err error) error {
	if _, ok := err.(*character.EventError); ok {
		return err
	}
	return &character.EventError{Character: s.meta.DisplayName(), Cause: err}
}

func (g *Game) sightingEvents(s *slot) []character.Event {
	seen := g.sightings[s.id]
	events := make([]character.Event, 0, len(seen))
	for _, sighting := range seen {
		events = append(events, sighting)
	}
	return events
}

// projectEvents converts global game events into the character-facing
// vocabulary. Physical bookkeeping events (turn deltas, movement,
// projectile advancement) have no per-character projection.
func (g *Game) projectEvents(s *slot, events []event.GameEvent) []character.Event {
	var out []character.Event
	for _, ev := range events {
		switch ev := ev.(type) {
		case event.TickAdvanced:
			out = append(out, character.Tick{
				Tick:  ev.Tick,
				State: character.NewSnapshot(s.state, s.intent),
			})
		case event.RoundStarted:
			out = append(out, character.RoundStarted{Round: ev.Round})
		case event.RoundEnded:
			if ev.Winner == nil {
				out = append(out, character.RoundEnded{}, character.RoundDrawn{})
				continue
			}
			winner := g.slot(*ev.Winner)
			meta := winner.meta
			out = append(out, character.RoundEnded{Winner: &meta})
			if s.id == winner.id {
				out = append(out, character.RoundWon{})
			}
		case event.CharacterHit:
			if s.id == ev.Victim {
				out = append(out, character.HitBy{Attacker: g.slot(ev.Owner).meta})
			} else if s.id == ev.Owner {
				out = append(out, character.AttackHit{
					Victim:   g.slot(ev.Victim).meta,
					Position: ev.Position,
				})
			}
		case event.CharacterDied:
			if s.id == ev.Character {
				out = append(out, character.Death{})
			} else {
				out = append(out, character.EnemyDied{Name: g.slot(ev.Character).meta.DisplayName()})
			}
		}
	}
	return out
}

// applyCommands folds a sorted command batch into the character's
// intent. Head and arms turn requests are clamped against the angle of
// action up front so intent never asks for an unreachable offset.
func (g *Game) applyCommands(s *slot, commands []character.Command) {
	for _, cmd := range commands {
		switch cmd := cmd.(type) {
		case character.Move:
			s.intent.Direction = cmd.Direction
			s.intent.Distance = cmd.Distance
		case character.Attack:
			s.intent.Attack = true
		case character.Turn:
			s.intent.TurnAngle = cmd.Angle
		case character.TurnHead:
			current := s.state.HeadHeading
			s.intent.TurnHeadAngle = clampActionAngle(current+cmd.Angle) - current
		case character.TurnArms:
			current := s.state.ArmsHeading
			s.intent.TurnArmsAngle = clampActionAngle(current+cmd.Angle) - current
		}
	}
}
