package world

// Agent is a host-side worker. The overlay reads position and the current task
// target; it never mutates agents.
type Agent struct {
	ID   string
	Name string
	Pos  Vec2i

	// TaskTargetID is the building the agent is currently working, or "".
	TaskTargetID string
}

func (w *World) Agents() []*Agent {
	out := make([]*Agent, 0, len(w.agents))
	for _, id := range w.agentOrder {
		if a, ok := w.agents[id]; ok {
			out = append(out, a)
		}
	}
	return out
}
