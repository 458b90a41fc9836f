package world

// InteractionCellFor is where a worker stands while operating a building.
func InteractionCellFor(pos Vec2i) Vec2i {
	return Vec2i{X: pos.X, Z: pos.Z + 1}
}

// stepAgents runs the host-side worker loop: each agent claims a workable
// drill, walks to its interaction cell and accrues work ticks; a full work
// cycle extracts one lump from the richest in-radius cell.
func (w *World) stepAgents() {
	claimed := map[string]string{}
	for _, id := range w.agentOrder {
		a := w.agents[id]
		if a == nil {
			continue
		}
		if a.TaskTargetID != "" {
			if !w.drillWorkable(a.TaskTargetID, claimed, a.ID) {
				a.TaskTargetID = ""
			}
		}
		if a.TaskTargetID == "" {
			a.TaskTargetID = w.pickDrill(a, claimed)
		}
		if a.TaskTargetID == "" {
			continue
		}
		claimed[a.TaskTargetID] = a.ID

		b, ok := w.buildings.Lookup(a.TaskTargetID)
		if !ok {
			a.TaskTargetID = ""
			continue
		}
		ic := InteractionCellFor(b.Pos)
		if a.Pos != ic {
			a.Pos = stepToward(a.Pos, ic)
			continue
		}
		w.workDrill(b)
	}
}

func (w *World) drillWorkable(id string, claimed map[string]string, agentID string) bool {
	if owner, taken := claimed[id]; taken && owner != agentID {
		return false
	}
	b, ok := w.buildings.Lookup(id)
	if !ok || b.Forbidden {
		return false
	}
	if b.Powered != nil && !*b.Powered {
		return false
	}
	def, ok := w.BuildingDef(b.DefID)
	if !ok || def.MiningRadius <= 0 {
		return false
	}
	return true
}

func (w *World) pickDrill(a *Agent, claimed map[string]string) string {
	bestID := ""
	bestDist := 0.0
	w.buildings.ForEach(func(_ int, b *Building) {
		if !w.drillWorkable(b.ID, claimed, a.ID) {
			return
		}
		d := a.Pos.Dist(b.Pos)
		if bestID == "" || d < bestDist {
			bestID = b.ID
			bestDist = d
		}
	})
	return bestID
}

// workDrill advances one work tick; a completed cycle extracts one lump from
// the richest mineral cell inside the drill's radius.
func (w *World) workDrill(b *Building) {
	if b.LumpTicks <= 0 {
		return
	}
	b.WorkTicks++
	if b.WorkTicks < b.LumpTicks {
		return
	}
	b.WorkTicks = 0

	def, ok := w.BuildingDef(b.DefID)
	if !ok {
		return
	}
	cell, found := w.richestCellInRadius(b.Pos, def.MiningRadius)
	if !found {
		return
	}
	w.grid.Extract(cell, 1)
}

func (w *World) richestCellInRadius(pos Vec2i, radius float64) (Vec2i, bool) {
	r := int(radius) + 1
	best := Vec2i{}
	bestAmt := 0
	for z := pos.Z - r; z <= pos.Z+r; z++ {
		for x := pos.X - r; x <= pos.X+r; x++ {
			c := Vec2i{X: x, Z: z}
			if pos.Dist(c) > radius {
				continue
			}
			if amt := w.grid.AmountAt(c); amt > bestAmt {
				best = c
				bestAmt = amt
			}
		}
	}
	return best, bestAmt > 0
}

func stepToward(from, to Vec2i) Vec2i {
	if from.X < to.X {
		from.X++
	} else if from.X > to.X {
		from.X--
	}
	if from.Z < to.Z {
		from.Z++
	} else if from.Z > to.Z {
		from.Z--
	}
	return from
}
