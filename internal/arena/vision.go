package arena

import (
	"math"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/geo"
)

// canSpot reports whether an observer at origin looking along
// viewAngle sees a target. The observer's cone is centered on its
// effective head heading; the target's apparent footprint is a sector
// around the bearing to it whose half-angle grows as it gets closer.
func canSpot(origin geo.Point, viewAngle float64, target geo.Point) bool {
	viewSector := geo.NewSector(viewAngle, AngleOfVision/2)
	alpha := math.Atan(CharacterRadius / origin.Dist(target))
	bearing := geo.NormalizeAbsoluteAngle(geo.AngleBetween(origin, target))
	return viewSector.Overlaps(geo.NewSector(bearing, alpha))
}

// runVision computes which living characters each living observer can
// see this tick. Sightings are per-observer projections, never global
// game events; they are delivered with the tick's dispatch.
func (g *Game) runVision() {
	living := g.livingSlots()
	sightings := make(map[event.CharacterID][]character.EnemySeen)
	for _, observer := range living {
		for _, target := range living {
			if observer.id == target.id {
				continue
			}
			if canSpot(observer.state.Pos, observer.state.EffectiveHeadHeading(), target.state.Pos) {
				sightings[observer.id] = append(sightings[observer.id], character.EnemySeen{
					Name:     target.meta.DisplayName(),
					Position: target.state.Pos,
				})
			}
		}
	}
	g.sightings = sightings
}
