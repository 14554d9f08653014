package arena

import (
	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/geo"
)

// createAttacks spawns a projectile for every living character whose
// intent requests one and whose cooldown has elapsed. The cooldown
// reset and intent clearing happen during advancement, when the event
// is applied.
func (g *Game) createAttacks() {
	for _, s := range g.livingSlots() {
		if !s.intent.Attack || s.state.AttackCooldown != 0 {
			continue
		}
		g.events.Record(event.AttackCreated{
			Attack:   g.nextAttackID(),
			Owner:    s.id,
			Position: s.state.Pos,
			Heading:  s.state.EffectiveArmsHeading(),
			Velocity: AttackVelocity,
		})
	}
}

// transitionAttacks advances every projectile one velocity step and
// records the outcome: missed when it leaves the arena, hit when a
// living character other than the owner is in range, advanced
// otherwise. Damage and removal happen at advancement. Damage taken
// earlier in the same tick counts toward the death check, so a victim
// struck by several projectiles at once still dies exactly once.
func (g *Game) transitionAttacks() {
	pending := make(map[event.CharacterID]float64)
	for _, attack := range g.attacks {
		next := geo.LineEndpoint(attack.pos, attack.velocity, attack.heading)
		if !insideArena(next) {
			g.events.Record(event.AttackMissed{Attack: attack.id})
			continue
		}
		victim := g.attackVictim(attack, next)
		if victim == nil {
			g.events.Record(event.AttackAdvanced{Attack: attack.id, Position: next})
			continue
		}
		g.events.Record(event.CharacterHit{
			Attack:   attack.id,
			Owner:    attack.owner,
			Victim:   victim.id,
			Position: next,
		})
		taken := pending[victim.id] + AttackDamage
		pending[victim.id] = taken
		if victim.state.HP-taken <= 0 && victim.state.HP-taken+AttackDamage > 0 {
			g.events.Record(event.CharacterDied{Character: victim.id})
		}
	}
}

// attackVictim picks the character struck by a projectile at pos: the
// nearest living non-owner within range, ties broken by lowest
// character id so simultaneous equidistant hits stay deterministic.
func (g *Game) attackVictim(attack attackState, pos geo.Point) *slot {
	var victim *slot
	var victimDist float64
	for _, s := range g.livingSlots() {
		if s.id == attack.owner {
			continue
		}
		d := pos.Dist(s.state.Pos)
		if d > AttackRadius+CharacterRadius {
			continue
		}
		if victim == nil || d < victimDist {
			victim = s
			victimDist = d
		}
	}
	return victim
}

func insideArena(p geo.Point) bool {
	return p.X >= 0 && p.X <= ArenaWidth && p.Y >= 0 && p.Y <= ArenaHeight
}
