package world

import (
	"encoding/json"

	"oresight.gg/internal/protocol"
)

func (w *World) applyAction(env ActionEnvelope) {
	sess := w.sessions[env.SessionID]
	if sess == nil {
		return
	}
	act := env.Act

	fail := func(code, msg string) {
		w.sendError(sess, code, msg, act.ActionID)
	}

	switch act.Op {
	case protocol.OpToggleKind:
		if act.Kind == "" {
			fail(protocol.ErrBadRequest, "missing kind")
			return
		}
		if _, ok := w.catalogs.Kinds.Defs[act.Kind]; !ok {
			fail(protocol.ErrUnknownKind, act.Kind)
			return
		}
		if w.ov != nil {
			w.ov.ToggleKind(act.Kind)
		}

	case protocol.OpEnableAllKinds:
		if w.ov != nil {
			w.ov.EnableAllKinds()
		}

	case protocol.OpDisableAllKinds:
		if w.ov != nil {
			w.ov.DisableAllKinds()
		}

	case protocol.OpExpandDeposit:
		if act.DepositKey == "" {
			fail(protocol.ErrBadRequest, "missing deposit_key")
			return
		}
		sess.expanded[act.DepositKey] = true

	case protocol.OpCollapseDeposit:
		delete(sess.expanded, act.DepositKey)

	case protocol.OpSetForbidden:
		w.applySetForbidden(sess, act)

	case protocol.OpRequestSurvey:
		due := w.tick.Load() + uint64(w.cfg.SurveyTicks)
		w.surveyDue = append(w.surveyDue, due)

	default:
		fail(protocol.ErrBadRequest, "unknown op "+act.Op)
	}
}

// applySetForbidden flips the forbidden flag on a building, or on every drill
// attached to a deposit. The flag lives on the host record; the overlay only
// reads it.
func (w *World) applySetForbidden(sess *panelSession, act protocol.ActMsg) {
	on := true
	if act.On != nil {
		on = *act.On
	}

	if act.TargetID != "" {
		b, ok := w.buildings.Lookup(act.TargetID)
		if !ok {
			w.sendError(sess, protocol.ErrStale, "building gone: "+act.TargetID, act.ActionID)
			return
		}
		b.Forbidden = on
		if w.ov != nil {
			w.ov.MarkFilterDirty()
		}
		return
	}

	if act.DepositKey != "" {
		if w.ov == nil {
			return
		}
		ids := w.ov.DepositDrillIDs(act.DepositKey)
		if len(ids) == 0 {
			w.sendError(sess, protocol.ErrInvalidTarget, "no drills on deposit "+act.DepositKey, act.ActionID)
			return
		}
		for _, id := range ids {
			if b, ok := w.buildings.Lookup(id); ok {
				b.Forbidden = on
			}
		}
		w.ov.MarkFilterDirty()
		return
	}

	w.sendError(sess, protocol.ErrBadRequest, "missing target_id or deposit_key", act.ActionID)
}

func (w *World) sendError(sess *panelSession, code, msg, actionID string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:     protocol.TypeError,
		Code:     code,
		Message:  msg,
		ActionID: actionID,
	})
	if err != nil {
		return
	}
	select {
	case sess.Out <- b:
	default:
	}
}
