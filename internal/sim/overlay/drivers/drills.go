package drivers

import (
	"log"

	"oresight.gg/internal/sim/overlay"
	"oresight.gg/internal/sim/world"
)

// Building families the probe understands. DRILL is the native powered drill;
// RIG is the third-party deep-rig family, integrated only when its defs carry
// the members the adapter needs.
const (
	FamilyDrill = "DRILL"
	FamilyRig   = "RIG"
)

type adapterKind int

const (
	adaptNative adapterKind = iota
	adaptRig
)

type familyCaps struct {
	kind   adapterKind
	radius float64
}

// Drills enumerates drill-like buildings through probed adapters.
type Drills struct {
	w    *world.World
	caps map[string]familyCaps // building def id -> adapter caps
}

// ProbeDrills inspects the building catalog once and registers an adapter per
// usable def. A def family that is present but missing expected members is
// logged once and skipped for the whole session; the core never sees it.
func ProbeDrills(w *world.World, logger *log.Logger) *Drills {
	d := &Drills{w: w, caps: map[string]familyCaps{}}
	rigBroken := false
	for id, def := range w.Catalogs().Buildings.Defs {
		switch def.Family {
		case FamilyDrill:
			if def.MiningRadius <= 0 {
				if logger != nil {
					logger.Printf("drill def %s: no mining radius, skipped", id)
				}
				continue
			}
			d.caps[id] = familyCaps{kind: adaptNative, radius: def.MiningRadius}
		case FamilyRig:
			if def.MiningRadius <= 0 || def.WorkTicksPerLump <= 0 {
				rigBroken = true
				continue
			}
			d.caps[id] = familyCaps{kind: adaptRig, radius: def.MiningRadius}
		}
	}
	if rigBroken {
		// Third-party integration failure: disable, log once, carry on.
		for id, c := range d.caps {
			if c.kind == adaptRig {
				delete(d.caps, id)
			}
		}
		if logger != nil {
			logger.Printf("rig defs malformed; rig integration disabled for this session")
		}
	}
	return d
}

func (d *Drills) Drills() []overlay.Drill {
	out := make([]overlay.Drill, 0, d.w.Buildings().Len())
	d.w.Buildings().ForEach(func(_ int, b *world.Building) {
		c, ok := d.caps[b.DefID]
		if !ok {
			return
		}
		switch c.kind {
		case adaptRig:
			out = append(out, &rigDrill{w: d.w, id: b.ID, radius: c.radius})
		default:
			out = append(out, &nativeDrill{w: d.w, id: b.ID, radius: c.radius})
		}
	})
	return out
}

// nativeDrill reads a powered drill record. All methods re-resolve the record
// so a despawn between refreshes reads as a dead handle, never stale data.
type nativeDrill struct {
	w      *world.World
	id     string
	radius float64
}

func (n *nativeDrill) ID() string            { return n.id }
func (n *nativeDrill) MiningRadius() float64 { return n.radius }

func (n *nativeDrill) rec() (*world.Building, bool) {
	return n.w.Buildings().Lookup(n.id)
}

func (n *nativeDrill) Alive() bool {
	_, ok := n.rec()
	return ok
}

func (n *nativeDrill) Cell() overlay.Cell {
	b, ok := n.rec()
	if !ok {
		return overlay.Cell{}
	}
	return overlay.Cell{X: b.Pos.X, Z: b.Pos.Z}
}

func (n *nativeDrill) InteractionCell() overlay.Cell {
	b, ok := n.rec()
	if !ok {
		return overlay.Cell{}
	}
	ic := world.InteractionCellFor(b.Pos)
	return overlay.Cell{X: ic.X, Z: ic.Z}
}

func (n *nativeDrill) Forbidden() bool {
	b, ok := n.rec()
	return ok && b.Forbidden
}

// Powered treats a missing power hookup as always powered.
func (n *nativeDrill) Powered() bool {
	b, ok := n.rec()
	if !ok {
		return false
	}
	if b.Powered == nil {
		return true
	}
	return *b.Powered
}

func (n *nativeDrill) ProgressFraction() float64 {
	b, ok := n.rec()
	if !ok || b.LumpTicks <= 0 {
		return 0
	}
	return clamp01(float64(b.WorkTicks) / float64(b.LumpTicks))
}

// rigDrill reads a third-party deep rig. Rigs have no power hookup and are
// operated standing on the rig cell itself.
type rigDrill struct {
	w      *world.World
	id     string
	radius float64
}

func (r *rigDrill) ID() string            { return r.id }
func (r *rigDrill) MiningRadius() float64 { return r.radius }

func (r *rigDrill) rec() (*world.Building, bool) {
	return r.w.Buildings().Lookup(r.id)
}

func (r *rigDrill) Alive() bool {
	_, ok := r.rec()
	return ok
}

func (r *rigDrill) Cell() overlay.Cell {
	b, ok := r.rec()
	if !ok {
		return overlay.Cell{}
	}
	return overlay.Cell{X: b.Pos.X, Z: b.Pos.Z}
}

func (r *rigDrill) InteractionCell() overlay.Cell { return r.Cell() }

func (r *rigDrill) Forbidden() bool {
	b, ok := r.rec()
	return ok && b.Forbidden
}

func (r *rigDrill) Powered() bool {
	_, ok := r.rec()
	return ok
}

func (r *rigDrill) ProgressFraction() float64 {
	b, ok := r.rec()
	if !ok || b.LumpTicks <= 0 {
		return 0
	}
	return clamp01(float64(b.WorkTicks) / float64(b.LumpTicks))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
