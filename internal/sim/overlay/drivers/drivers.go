// Package drivers adapts host world objects to the overlay's capability
// interfaces. Adapter selection happens once at startup by probing the
// building catalog; the overlay core never inspects building types.
package drivers

import (
	"oresight.gg/internal/sim/overlay"
	"oresight.gg/internal/sim/world"
)

// GridOracle adapts the host resource grid to the overlay oracle.
type GridOracle struct {
	G *world.Grid
}

func (o GridOracle) Bounds() (overlay.Bounds, bool) {
	r, ok := o.G.Bounds()
	if !ok {
		return overlay.Bounds{}, false
	}
	return overlay.Bounds{
		Min: overlay.Cell{X: r.Min.X, Z: r.Min.Z},
		Max: overlay.Cell{X: r.Max.X, Z: r.Max.Z},
	}, true
}

func (o GridOracle) KindAt(c overlay.Cell) (string, bool) {
	return o.G.KindAt(world.Vec2i{X: c.X, Z: c.Z})
}

func (o GridOracle) AmountAt(c overlay.Cell) int {
	return o.G.AmountAt(world.Vec2i{X: c.X, Z: c.Z})
}

// Agents adapts the host agent registry.
type Agents struct {
	W *world.World
}

func (s Agents) Agents() []overlay.AgentInfo {
	hosts := s.W.Agents()
	out := make([]overlay.AgentInfo, 0, len(hosts))
	for _, a := range hosts {
		out = append(out, overlay.AgentInfo{
			ID:           a.ID,
			Cell:         overlay.Cell{X: a.Pos.X, Z: a.Pos.Z},
			TaskTargetID: a.TaskTargetID,
		})
	}
	return out
}
