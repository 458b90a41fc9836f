package world

import (
	"sort"

	"oresight.gg/internal/sim/catalogs"
)

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk holds one 16x16 patch of the survey plane: a kind id per cell plus the
// remaining mineral amount in that cell.
type Chunk struct {
	CX, CZ  int
	Kinds   []uint16 // len = 16*16
	Amounts []uint16
}

func (c *Chunk) index(x, z int) int {
	// x fastest, then z
	return x + z*16
}

type GridGen struct {
	Seed      int64
	BoundaryR int // cells

	// Kind palette ids and per-kind yield ranges, resolved from the catalog.
	Empty  uint16
	Spawns []KindSpawn
}

type KindSpawn struct {
	ID       uint16
	Permille int // cluster seed chance per cell
	YieldMin int
	YieldMax int
}

// Grid is the host resource grid. Accessed only from the world loop goroutine.
type Grid struct {
	gen    GridGen
	chunks map[ChunkKey]*Chunk

	palette []string
}

func NewGrid(gen GridGen, cats *catalogs.Catalogs) *Grid {
	return &Grid{
		gen:     gen,
		chunks:  map[ChunkKey]*Chunk{},
		palette: cats.Kinds.Palette,
	}
}

// Bounds reports the surveyable region. ok is false when the grid has no area,
// which callers must treat as "no data", not as an empty survey.
func (g *Grid) Bounds() (Rect, bool) {
	if g == nil || g.gen.BoundaryR <= 0 {
		return Rect{}, false
	}
	r := g.gen.BoundaryR
	return Rect{Min: Vec2i{X: -r, Z: -r}, Max: Vec2i{X: r, Z: r}}, true
}

// KindAt returns the mineral kind id at a cell, or ok=false for empty cells and
// cells outside the boundary.
func (g *Grid) KindAt(c Vec2i) (string, bool) {
	k := g.kindRaw(c)
	if k == g.gen.Empty {
		return "", false
	}
	if int(k) >= len(g.palette) {
		return "", false
	}
	return g.palette[k], true
}

func (g *Grid) AmountAt(c Vec2i) int {
	b, ok := g.Bounds()
	if !ok || !b.Contains(c) {
		return 0
	}
	ch := g.getOrGenChunk(floorDiv(c.X, 16), floorDiv(c.Z, 16))
	return int(ch.Amounts[ch.index(mod(c.X, 16), mod(c.Z, 16))])
}

// Extract removes up to want units from a cell and returns how much came out.
// Extraction to zero clears the cell's kind.
func (g *Grid) Extract(c Vec2i, want int) int {
	b, ok := g.Bounds()
	if !ok || !b.Contains(c) || want <= 0 {
		return 0
	}
	ch := g.getOrGenChunk(floorDiv(c.X, 16), floorDiv(c.Z, 16))
	i := ch.index(mod(c.X, 16), mod(c.Z, 16))
	got := int(ch.Amounts[i])
	if got > want {
		got = want
	}
	ch.Amounts[i] -= uint16(got)
	if ch.Amounts[i] == 0 {
		ch.Kinds[i] = g.gen.Empty
	}
	return got
}

func (g *Grid) kindRaw(c Vec2i) uint16 {
	b, ok := g.Bounds()
	if !ok || !b.Contains(c) {
		return g.gen.Empty
	}
	ch := g.getOrGenChunk(floorDiv(c.X, 16), floorDiv(c.Z, 16))
	return ch.Kinds[ch.index(mod(c.X, 16), mod(c.Z, 16))]
}

func (g *Grid) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(g.chunks))
	for k := range g.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (g *Grid) getOrGenChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := g.chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:      cx,
		CZ:      cz,
		Kinds:   make([]uint16, 16*16),
		Amounts: make([]uint16, 16*16),
	}
	g.generateChunk(ch)
	g.chunks[k] = ch
	return ch
}

// generateChunk seeds mineral clusters deterministically from (seed, cell). A
// cell either hosts a cluster seed for some kind or copies the kind of a
// neighboring seed one cell up-left, which produces small contiguous lodes.
func (g *Grid) generateChunk(ch *Chunk) {
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			wx := ch.CX*16 + x
			wz := ch.CZ*16 + z

			kind, amt := g.cellGen(wx, wz)
			i := ch.index(x, z)
			ch.Kinds[i] = kind
			ch.Amounts[i] = amt
		}
	}
}

func (g *Grid) cellGen(wx, wz int) (uint16, uint16) {
	if k, a, ok := g.seedAt(wx, wz); ok {
		return k, a
	}
	// Grow lodes: adopt an adjacent seed so same-kind cells clump.
	for _, d := range [...][2]int{{-1, 0}, {0, -1}, {-1, -1}, {1, -1}} {
		if k, _, ok := g.seedAt(wx+d[0], wz+d[1]); ok {
			if hash2(g.gen.Seed^0x517cc1b7, wx, wz)%1000 < 600 {
				return k, g.yieldFor(k, wx, wz)
			}
		}
	}
	return g.gen.Empty, 0
}

func (g *Grid) seedAt(wx, wz int) (uint16, uint16, bool) {
	roll := int(hash2(g.gen.Seed, wx, wz) % 1000)
	acc := 0
	for _, s := range g.gen.Spawns {
		acc += s.Permille
		if roll < acc {
			return s.ID, g.yieldFor(s.ID, wx, wz), true
		}
	}
	return g.gen.Empty, 0, false
}

func (g *Grid) yieldFor(kind uint16, wx, wz int) uint16 {
	for _, s := range g.gen.Spawns {
		if s.ID != kind {
			continue
		}
		span := s.YieldMax - s.YieldMin
		if span <= 0 {
			return uint16(s.YieldMin)
		}
		return uint16(s.YieldMin + int(hash2(g.gen.Seed^0x27d4eb2f, wx, wz)%uint64(span+1)))
	}
	return 0
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
