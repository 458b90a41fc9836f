package world

import (
	"testing"

	"oresight.gg/internal/sim/catalogs"
)

func testGrid(t *testing.T, seed int64, boundaryR int) (*Grid, *catalogs.Catalogs) {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	gen, err := gridGenFrom(WorldConfig{Seed: seed, BoundaryR: boundaryR}, cats)
	if err != nil {
		t.Fatalf("grid gen: %v", err)
	}
	return NewGrid(gen, cats), cats
}

func TestGrid_Deterministic(t *testing.T) {
	a, _ := testGrid(t, 1337, 32)
	b, _ := testGrid(t, 1337, 32)

	minerals := 0
	for z := -32; z <= 32; z++ {
		for x := -32; x <= 32; x++ {
			c := Vec2i{X: x, Z: z}
			ka, oka := a.KindAt(c)
			kb, okb := b.KindAt(c)
			if ka != kb || oka != okb {
				t.Fatalf("cell %+v differs: %q/%v vs %q/%v", c, ka, oka, kb, okb)
			}
			if a.AmountAt(c) != b.AmountAt(c) {
				t.Fatalf("cell %+v amount differs", c)
			}
			if oka {
				minerals++
				if a.AmountAt(c) <= 0 {
					t.Fatalf("mineral cell %+v with zero amount", c)
				}
			}
		}
	}
	if minerals == 0 {
		t.Fatalf("no mineral cells generated in 65x65 region")
	}
}

func TestGrid_BoundaryAndBounds(t *testing.T) {
	g, _ := testGrid(t, 1, 8)

	r, ok := g.Bounds()
	if !ok {
		t.Fatalf("expected bounds")
	}
	if r.Min != (Vec2i{X: -8, Z: -8}) || r.Max != (Vec2i{X: 8, Z: 8}) {
		t.Fatalf("bounds=%+v", r)
	}

	// Outside the boundary everything reads empty.
	if _, ok := g.KindAt(Vec2i{X: 9, Z: 0}); ok {
		t.Fatalf("kind outside boundary")
	}
	if g.AmountAt(Vec2i{X: 0, Z: -9}) != 0 {
		t.Fatalf("amount outside boundary")
	}

	// A zero-radius grid has no data at all.
	empty, _ := testGrid(t, 1, 0)
	if _, ok := empty.Bounds(); ok {
		t.Fatalf("zero boundary reported bounds")
	}
}

func TestGrid_ExtractDepletesAndClears(t *testing.T) {
	g, _ := testGrid(t, 1337, 32)

	var cell Vec2i
	found := false
	for z := -32; z <= 32 && !found; z++ {
		for x := -32; x <= 32; x++ {
			c := Vec2i{X: x, Z: z}
			if _, ok := g.KindAt(c); ok {
				cell = c
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no mineral cell found")
	}

	amt := g.AmountAt(cell)
	if got := g.Extract(cell, 1); got != 1 {
		t.Fatalf("extract=%d want 1", got)
	}
	if g.AmountAt(cell) != amt-1 {
		t.Fatalf("amount=%d want %d", g.AmountAt(cell), amt-1)
	}

	// Draining the cell clears its kind.
	if got := g.Extract(cell, 10_000); got != amt-1 {
		t.Fatalf("drain=%d want %d", got, amt-1)
	}
	if _, ok := g.KindAt(cell); ok {
		t.Fatalf("drained cell still has a kind")
	}
	if g.Extract(cell, 1) != 0 {
		t.Fatalf("extract from empty cell")
	}
}
