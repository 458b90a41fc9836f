package overlay

import (
	"fmt"
	"math"
)

// Cell is duplicated here to avoid import cycles (overlay is used by world).
type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

type Bounds struct {
	Min Cell
	Max Cell
}

// Oracle is the host's per-cell mineral lookup. Bounds ok=false means the map
// is not available; callers must skip the scan, not treat it as zero deposits.
type Oracle interface {
	Bounds() (Bounds, bool)
	KindAt(Cell) (string, bool)
	AmountAt(Cell) int
}

// Deposit is one maximal 8-connected region of same-kind cells. Deposits carry
// no persistent identity; (kind, anchor) re-identifies a deposit across scans
// because the builder is deterministic.
type Deposit struct {
	Kind       string
	Cells      []Cell // discovery order; Cells[0] is the anchor
	Anchor     Cell
	TotalYield int
}

// Key is the logical re-identification key for a deposit.
func (d *Deposit) Key() string {
	return fmt.Sprintf("%s@%d,%d", d.Kind, d.Anchor.X, d.Anchor.Z)
}

func cellDist(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx + dz*dz)
}

// neighbors8 is the fixed BFS expansion order. Order matters only for the
// discovery order of cells, not for which cells end up in a deposit.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// BuildDeposits scans the whole bounded grid in raster order (rows by Z, then X
// ascending) and flood-fills every unassigned non-empty cell into a deposit.
// Raster order plus breadth-first expansion makes the result deterministic: the
// anchor is always the raster-first cell of its region.
//
// ok is false when the oracle has no data; the previous build must be kept.
func BuildDeposits(o Oracle) (deposits []*Deposit, ok bool) {
	b, ok := o.Bounds()
	if !ok {
		return nil, false
	}

	w := b.Max.X - b.Min.X + 1
	h := b.Max.Z - b.Min.Z + 1
	if w <= 0 || h <= 0 {
		return nil, false
	}
	assigned := make([]bool, w*h)
	idx := func(c Cell) int { return (c.Z-b.Min.Z)*w + (c.X - b.Min.X) }

	var queue []Cell
	for z := b.Min.Z; z <= b.Max.Z; z++ {
		for x := b.Min.X; x <= b.Max.X; x++ {
			start := Cell{X: x, Z: z}
			if assigned[idx(start)] {
				continue
			}
			kind, found := o.KindAt(start)
			if !found {
				continue
			}

			d := &Deposit{Kind: kind, Anchor: start}
			assigned[idx(start)] = true
			queue = append(queue[:0], start)
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				d.Cells = append(d.Cells, c)
				d.TotalYield += o.AmountAt(c)

				for _, n := range neighbors8 {
					nc := Cell{X: c.X + n[0], Z: c.Z + n[1]}
					if nc.X < b.Min.X || nc.X > b.Max.X || nc.Z < b.Min.Z || nc.Z > b.Max.Z {
						continue
					}
					if assigned[idx(nc)] {
						continue
					}
					nk, nfound := o.KindAt(nc)
					if !nfound || nk != kind {
						continue
					}
					assigned[idx(nc)] = true
					queue = append(queue, nc)
				}
			}
			deposits = append(deposits, d)
		}
	}
	return deposits, true
}
