package world

import (
	"encoding/json"

	"oresight.gg/internal/protocol"
	"oresight.gg/internal/sim/overlay"
)

// pushPanels sends the current read-model to every session. Rows come straight
// from the overlay cache; only session expansion differs per receiver.
func (w *World) pushPanels(tick uint64) {
	if w.ov == nil || len(w.sessions) == 0 {
		return
	}
	views := w.ov.Views()
	kinds := w.ov.KindRows()

	for _, sess := range w.sessions {
		msg := protocol.PanelMsg{
			Type:            protocol.TypePanel,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			LastScanTick:    w.ov.LastScanTick(),
			Deposits:        make([]protocol.DepositRow, 0, len(views)),
			Kinds:           kindRows(kinds),
		}
		for _, v := range views {
			row := protocol.DepositRow{
				Key:          v.Key,
				Kind:         v.Kind,
				Label:        v.Label,
				Commonality:  v.Commonality,
				Anchor:       [2]int{v.Anchor.X, v.Anchor.Z},
				Cells:        v.CellCount,
				TotalYield:   v.TotalYield,
				Drills:       v.DrillCount,
				ActiveDrills: v.ActiveDrillCount,
			}
			if sess.expanded[v.Key] {
				row.Expanded = true
				row.DrillRows = drillRows(w.ov.DrillRows(v.Key))
			}
			msg.Deposits = append(msg.Deposits, row)
		}

		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case sess.Out <- b:
		default:
			// Receiver backlogged; skip this push, the next one supersedes it.
		}
	}
}

func kindRows(in []overlay.KindRow) []protocol.KindRow {
	out := make([]protocol.KindRow, 0, len(in))
	for _, k := range in {
		out = append(out, protocol.KindRow{
			Kind:               k.Kind,
			Label:              k.Label,
			Commonality:        k.Commonality,
			Enabled:            k.Enabled,
			ExplicitlyDisabled: k.ExplicitlyDisabled,
			Discovered:         k.Discovered,
		})
	}
	return out
}

func drillRows(in []overlay.DrillStatus) []protocol.DrillRow {
	out := make([]protocol.DrillRow, 0, len(in))
	for _, st := range in {
		out = append(out, protocol.DrillRow{
			DrillID:        st.DrillID,
			State:          st.State.String(),
			WorkerID:       st.WorkerID,
			Powered:        st.Powered,
			Forbidden:      st.Forbidden,
			Progress:       st.Progress,
			MineableAmount: st.MineableAmount,
		})
	}
	return out
}
