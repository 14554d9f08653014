package arena

import (
	"math"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/geo"
)

// advance folds the tick's recorded events into authoritative state.
// This is the only place character state, attack state, intents, and
// the round status are mutated.
func (g *Game) advance(events []event.GameEvent) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case event.TickAdvanced:
			g.tick++
			for _, s := range g.slots {
				if s.state.AttackCooldown > 0 {
					s.state.AttackCooldown--
				}
			}
		case event.RoundStarted:
			// Placement happened during round init; the event exists
			// for replay consumers.
		case event.RoundEnded:
			if ev.Winner != nil {
				g.roundState = RoundState{Outcome: Won, Winner: *ev.Winner}
				if s := g.slot(*ev.Winner); s != nil {
					s.state.Stats.RoundsWon++
				}
			} else {
				g.roundState = RoundState{Outcome: Drawn}
			}
		case event.CharacterTurned:
			s := g.slot(ev.Character)
			s.state.Heading = geo.NormalizeAbsoluteAngle(s.state.Heading + ev.Delta)
			s.intent.TurnAngle = remainingTurn(s.intent.TurnAngle, ev.Delta, MaxTurnRate)
		case event.CharacterHeadTurned:
			s := g.slot(ev.Character)
			s.state.HeadHeading += ev.Delta
			s.intent.TurnHeadAngle = remainingTurn(s.intent.TurnHeadAngle, ev.Delta, MaxHeadTurnRate)
		case event.CharacterArmsTurned:
			s := g.slot(ev.Character)
			s.state.ArmsHeading += ev.Delta
			s.intent.TurnArmsAngle = remainingTurn(s.intent.TurnArmsAngle, ev.Delta, MaxArmsTurnRate)
		case event.CharacterPositionUpdated:
			s := g.slot(ev.Character)
			s.state.Pos = s.state.Pos.Add(ev.Delta)
			s.intent.Distance = math.Max(s.intent.Distance-ev.Delta.Length(), 0)
		case event.AttackCreated:
			g.attacks = append(g.attacks, attackState{
				id:       ev.Attack,
				owner:    ev.Owner,
				pos:      ev.Position,
				heading:  ev.Heading,
				velocity: ev.Velocity,
			})
			owner := g.slot(ev.Owner)
			owner.state.AttackCooldown = AttackCooldown
			owner.intent.Attack = false
		case event.AttackAdvanced:
			if a := g.attack(ev.Attack); a != nil {
				a.pos = ev.Position
			}
		case event.AttackMissed:
			g.removeAttack(ev.Attack)
		case event.CharacterHit:
			g.removeAttack(ev.Attack)
			victim := g.slot(ev.Victim)
			victim.state.HP = math.Max(victim.state.HP-AttackDamage, 0)
		case event.CharacterDied:
			// HP already reached zero through the hit; the event exists
			// for projections and replay consumers.
		}
	}
}

// remainingTurn is the intent left after applying a turn delta. Small
// residuals below the per-tick rate collapse to zero so float noise
// cannot keep a turn pending forever.
func remainingTurn(intended, applied, rate float64) float64 {
	if math.Abs(intended) < rate {
		return 0
	}
	return intended - applied
}

func (g *Game) attack(id uint64) *attackState {
	for i := range g.attacks {
		if g.attacks[i].id == id {
			return &g.attacks[i]
		}
	}
	return nil
}

func (g *Game) removeAttack(id uint64) {
	for i := range g.attacks {
		if g.attacks[i].id == id {
			g.attacks = append(g.attacks[:i], g.attacks[i+1:]...)
			return
		}
	}
}
