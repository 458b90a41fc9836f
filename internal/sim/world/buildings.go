package world

import "fmt"

// Building is a placed structure record. Records live in a flat arena and are
// mutated in place through their index; handles held across ticks must check
// Spawned before use.
type Building struct {
	ID    string
	DefID string
	Pos   Vec2i

	Spawned   bool
	Forbidden bool

	// Powered is nil for buildings without a power hookup; such buildings are
	// treated as always powered.
	Powered *bool

	// Drill work bookkeeping, advanced by the world step for the worked drill.
	WorkTicks int
	LumpTicks int // ticks needed per extracted lump, from the def
}

// BuildingArena is an indexable arena of building records. Slots are reused
// after despawn; ids are never reused.
type BuildingArena struct {
	recs []Building
	free []int
	byID map[string]int
}

func NewBuildingArena() *BuildingArena {
	return &BuildingArena{byID: map[string]int{}}
}

func (a *BuildingArena) Add(b Building) int {
	if b.ID == "" {
		panic("building with empty id")
	}
	b.Spawned = true
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		a.recs[i] = b
		a.byID[b.ID] = i
		return i
	}
	a.recs = append(a.recs, b)
	i := len(a.recs) - 1
	a.byID[b.ID] = i
	return i
}

// At returns a pointer into the arena; the record is updated in place.
func (a *BuildingArena) At(i int) *Building {
	if i < 0 || i >= len(a.recs) {
		return nil
	}
	return &a.recs[i]
}

func (a *BuildingArena) Lookup(id string) (*Building, bool) {
	i, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	b := &a.recs[i]
	if !b.Spawned {
		return nil, false
	}
	return b, true
}

func (a *BuildingArena) Remove(id string) bool {
	i, ok := a.byID[id]
	if !ok {
		return false
	}
	a.recs[i].Spawned = false
	delete(a.byID, id)
	a.free = append(a.free, i)
	return true
}

// ForEach visits spawned records in arena order.
func (a *BuildingArena) ForEach(fn func(i int, b *Building)) {
	for i := range a.recs {
		if a.recs[i].Spawned {
			fn(i, &a.recs[i])
		}
	}
}

func (a *BuildingArena) Len() int { return len(a.byID) }

func buildingID(def string, n uint64) string {
	return fmt.Sprintf("B%d_%s", n, def)
}
