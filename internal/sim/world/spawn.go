package world

import "fmt"

// Spawn helpers. Safe before Run starts (wiring, tests); afterwards only from
// the world loop goroutine.

func (w *World) SpawnBuilding(defID string, pos Vec2i) (string, error) {
	def, ok := w.catalogs.Buildings.Defs[defID]
	if !ok {
		return "", fmt.Errorf("unknown building def %q", defID)
	}
	id := buildingID(defID, w.nextBuildingNum.Add(1))
	b := Building{
		ID:        id,
		DefID:     defID,
		Pos:       pos,
		LumpTicks: def.WorkTicksPerLump,
	}
	if def.HasPower {
		on := true
		b.Powered = &on
	}
	w.buildings.Add(b)
	return id, nil
}

func (w *World) SpawnAgent(name string, pos Vec2i) string {
	id := fmt.Sprintf("A%d", w.nextAgentNum.Add(1))
	w.agents[id] = &Agent{ID: id, Name: name, Pos: pos}
	w.agentOrder = append(w.agentOrder, id)
	return id
}

// SetPowered flips a building's power state; no-op for buildings without a
// power hookup.
func (w *World) SetPowered(id string, on bool) bool {
	b, ok := w.buildings.Lookup(id)
	if !ok || b.Powered == nil {
		return false
	}
	*b.Powered = on
	return true
}

// RequestSurvey schedules a survey completing after the configured delay.
func (w *World) RequestSurvey() {
	w.surveyDue = append(w.surveyDue, w.tick.Load()+uint64(w.cfg.SurveyTicks))
}
