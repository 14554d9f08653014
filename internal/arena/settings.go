package arena

import "github.com/luarena/luarena/internal/geo"

// Simulation tuning constants. Angles are radians, distances arena
// units, rates are per tick.
const (
	// MaxTurnRate caps the body turn applied in one tick.
	MaxTurnRate = 0.05
	// MaxHeadTurnRate caps the head turn applied in one tick.
	MaxHeadTurnRate = 0.1
	// MaxArmsTurnRate caps the arms turn applied in one tick.
	MaxArmsTurnRate = 0.08
	// AngleOfVision is the full width of the vision cone.
	AngleOfVision = 0.9 * geo.HalfPi
	// AngleOfAction bounds the head and arms offset from the body
	// heading, symmetrically.
	AngleOfAction = geo.HalfPi
	// CharacterRadius is the physical size of a character.
	CharacterRadius = 25.0
	// AttackRadius is the physical size of a projectile.
	AttackRadius = 4.0
	// AttackDamage is subtracted from a victim's hit points per hit.
	AttackDamage = 10.0
	// AttackCooldown is the number of ticks between projectile spawns.
	AttackCooldown = 35
	// AttackVelocity is the fixed per-tick projectile step.
	AttackVelocity = 2.5
	// MaxVelocity caps character movement per tick.
	MaxVelocity = 1.0
	// ArenaWidth and ArenaHeight are the arena bounds.
	ArenaWidth  = 1600.0
	ArenaHeight = 1200.0

	// spawnMargin keeps round-start placements away from the walls.
	spawnMargin = CharacterRadius + 5
)
