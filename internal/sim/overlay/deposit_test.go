package overlay

import (
	"reflect"
	"testing"
)

// mapOracle is a hand-built grid for deposit tests. Cells absent from kinds
// are empty.
type mapOracle struct {
	bounds  Bounds
	haveMap bool
	kinds   map[Cell]string
	amounts map[Cell]int
}

func (m *mapOracle) Bounds() (Bounds, bool) { return m.bounds, m.haveMap }

func (m *mapOracle) KindAt(c Cell) (string, bool) {
	k, ok := m.kinds[c]
	return k, ok
}

func (m *mapOracle) AmountAt(c Cell) int { return m.amounts[c] }

func oracle3x3(kind string) *mapOracle {
	o := &mapOracle{
		bounds:  Bounds{Min: Cell{X: 0, Z: 0}, Max: Cell{X: 2, Z: 2}},
		haveMap: true,
		kinds:   map[Cell]string{},
		amounts: map[Cell]int{},
	}
	for z := 0; z < 3; z++ {
		for x := 0; x < 3; x++ {
			c := Cell{X: x, Z: z}
			o.kinds[c] = kind
			o.amounts[c] = 10
		}
	}
	return o
}

func TestBuildDeposits_SingleRegion(t *testing.T) {
	o := oracle3x3("IRON")

	deps, ok := BuildDeposits(o)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(deps) != 1 {
		t.Fatalf("deposits=%d want 1", len(deps))
	}
	d := deps[0]
	if d.Kind != "IRON" {
		t.Fatalf("kind=%q want IRON", d.Kind)
	}
	if len(d.Cells) != 9 {
		t.Fatalf("cells=%d want 9", len(d.Cells))
	}
	if d.TotalYield != 90 {
		t.Fatalf("yield=%d want 90", d.TotalYield)
	}
	if d.Anchor != (Cell{X: 0, Z: 0}) {
		t.Fatalf("anchor=%+v want (0,0)", d.Anchor)
	}
	if got, want := d.Key(), "IRON@0,0"; got != want {
		t.Fatalf("key=%q want %q", got, want)
	}
}

func TestBuildDeposits_CornerRegion(t *testing.T) {
	// Three cells in the top-left corner of a 3x3 grid, rest empty.
	o := &mapOracle{
		bounds:  Bounds{Min: Cell{X: 0, Z: 0}, Max: Cell{X: 2, Z: 2}},
		haveMap: true,
		kinds: map[Cell]string{
			{X: 0, Z: 0}: "IRON",
			{X: 0, Z: 1}: "IRON",
			{X: 1, Z: 0}: "IRON",
		},
		amounts: map[Cell]int{
			{X: 0, Z: 0}: 10, {X: 0, Z: 1}: 10, {X: 1, Z: 0}: 10,
		},
	}

	deps, ok := BuildDeposits(o)
	if !ok || len(deps) != 1 {
		t.Fatalf("ok=%v deposits=%d want 1", ok, len(deps))
	}
	d := deps[0]
	if d.Anchor != (Cell{X: 0, Z: 0}) || len(d.Cells) != 3 || d.TotalYield != 30 {
		t.Fatalf("deposit=%+v", d)
	}
}

func TestBuildDeposits_PartitionsCells(t *testing.T) {
	// Two IRON regions separated by an empty column, plus one COPPER cell
	// diagonally touching the left region. Different kinds never merge.
	o := &mapOracle{
		bounds:  Bounds{Min: Cell{X: 0, Z: 0}, Max: Cell{X: 4, Z: 2}},
		haveMap: true,
		kinds: map[Cell]string{
			{X: 0, Z: 0}: "IRON",
			{X: 1, Z: 0}: "IRON",
			{X: 0, Z: 1}: "IRON",
			{X: 2, Z: 1}: "COPPER",
			{X: 4, Z: 0}: "IRON",
			{X: 4, Z: 1}: "IRON",
		},
		amounts: map[Cell]int{
			{X: 0, Z: 0}: 1, {X: 1, Z: 0}: 2, {X: 0, Z: 1}: 3,
			{X: 2, Z: 1}: 7,
			{X: 4, Z: 0}: 4, {X: 4, Z: 1}: 5,
		},
	}

	deps, ok := BuildDeposits(o)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(deps) != 3 {
		t.Fatalf("deposits=%d want 3", len(deps))
	}

	seen := map[Cell]int{}
	for _, d := range deps {
		for _, c := range d.Cells {
			seen[c]++
		}
	}
	if len(seen) != len(o.kinds) {
		t.Fatalf("covered %d cells want %d", len(seen), len(o.kinds))
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("cell %+v assigned %d times", c, n)
		}
	}

	byKey := map[string]*Deposit{}
	for _, d := range deps {
		byKey[d.Key()] = d
	}
	if d := byKey["IRON@0,0"]; d == nil || d.TotalYield != 6 {
		t.Fatalf("IRON@0,0: %+v", d)
	}
	if d := byKey["COPPER@2,1"]; d == nil || d.TotalYield != 7 {
		t.Fatalf("COPPER@2,1: %+v", d)
	}
	if d := byKey["IRON@4,0"]; d == nil || d.TotalYield != 9 {
		t.Fatalf("IRON@4,0: %+v", d)
	}
}

func TestBuildDeposits_DiagonalConnectivity(t *testing.T) {
	// A diagonal staircase is one region under 8-neighborhood.
	o := &mapOracle{
		bounds:  Bounds{Min: Cell{X: 0, Z: 0}, Max: Cell{X: 3, Z: 3}},
		haveMap: true,
		kinds: map[Cell]string{
			{X: 0, Z: 0}: "COAL",
			{X: 1, Z: 1}: "COAL",
			{X: 2, Z: 2}: "COAL",
			{X: 3, Z: 3}: "COAL",
		},
		amounts: map[Cell]int{
			{X: 0, Z: 0}: 1, {X: 1, Z: 1}: 1, {X: 2, Z: 2}: 1, {X: 3, Z: 3}: 1,
		},
	}

	deps, ok := BuildDeposits(o)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(deps) != 1 {
		t.Fatalf("deposits=%d want 1", len(deps))
	}
	if deps[0].Anchor != (Cell{X: 0, Z: 0}) {
		t.Fatalf("anchor=%+v want (0,0)", deps[0].Anchor)
	}
	if len(deps[0].Cells) != 4 {
		t.Fatalf("cells=%d want 4", len(deps[0].Cells))
	}
}

func TestBuildDeposits_Deterministic(t *testing.T) {
	o := &mapOracle{
		bounds:  Bounds{Min: Cell{X: -2, Z: -2}, Max: Cell{X: 3, Z: 3}},
		haveMap: true,
		kinds: map[Cell]string{
			{X: -2, Z: -1}: "IRON",
			{X: -1, Z: -1}: "IRON",
			{X: 2, Z: 0}:   "COPPER",
			{X: 3, Z: 1}:   "COPPER",
			{X: 0, Z: 3}:   "COAL",
		},
		amounts: map[Cell]int{
			{X: -2, Z: -1}: 5, {X: -1, Z: -1}: 5,
			{X: 2, Z: 0}: 3, {X: 3, Z: 1}: 3,
			{X: 0, Z: 3}: 8,
		},
	}

	a, ok := BuildDeposits(o)
	if !ok {
		t.Fatalf("first build failed")
	}
	b, ok := BuildDeposits(o)
	if !ok {
		t.Fatalf("second build failed")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("builds differ:\n%+v\n%+v", a, b)
	}

	// Anchors come out in raster order.
	wantKeys := []string{"IRON@-2,-1", "COPPER@2,0", "COAL@0,3"}
	if len(a) != len(wantKeys) {
		t.Fatalf("deposits=%d want %d", len(a), len(wantKeys))
	}
	for i, d := range a {
		if d.Key() != wantKeys[i] {
			t.Fatalf("deposit %d key=%q want %q", i, d.Key(), wantKeys[i])
		}
	}
}

func TestBuildDeposits_NoMapKeepsNothing(t *testing.T) {
	o := &mapOracle{haveMap: false}
	deps, ok := BuildDeposits(o)
	if ok {
		t.Fatalf("expected ok=false with no map")
	}
	if deps != nil {
		t.Fatalf("deposits=%v want nil", deps)
	}
}
