// Package overlay derives the prospecting panel read-model from host state:
// contiguous deposits out of the resource grid, drill-to-deposit association,
// drill work status, and the filtered views the panel serves.
//
// Everything here runs on the world loop goroutine. The overlay reads host
// state through narrow interfaces and never mutates it.
package overlay

import (
	"log"
	"sort"

	"oresight.gg/internal/prefs"
	"oresight.gg/internal/sim/catalogs"
)

type Config struct {
	// ScanPollTicks is the fallback rescan cadence for missed discovery
	// signals, ~1 second of sim time.
	ScanPollTicks uint64
	// SlowRefreshTicks rate-limits the full-agent scan and the per-drill
	// mineable amount walk.
	SlowRefreshTicks uint64
}

type ScanRecord struct {
	Tick        uint64         `json:"tick"`
	Deposits    int            `json:"deposits"`
	Cells       int            `json:"cells"`
	YieldByKind map[string]int `json:"yield_by_kind,omitempty"`
}

type ScanLogger interface {
	WriteScan(ScanRecord) error
}

type Overlay struct {
	cfg    Config
	oracle Oracle
	drills DrillSource
	agents AgentSource
	filter *prefs.Store
	kinds  *catalogs.KindCatalog
	logger *log.Logger

	scanLog ScanLogger // may be nil

	deposits     []*Deposit
	byKey        map[string]*Deposit
	attached     map[string][]Drill // deposit key -> drills, first-match order
	status       map[string]*DrillStatus
	lastScanTick uint64
	scanCount    uint64

	pendingScan bool
	nextPoll    uint64
	nextSlow    uint64

	view viewCache
}

// New wires an overlay for one session. The filter store is injected by the
// owning session context, not reached through a global.
func New(cfg Config, oracle Oracle, drills DrillSource, agents AgentSource, filter *prefs.Store, kinds *catalogs.KindCatalog, logger *log.Logger) *Overlay {
	if cfg.ScanPollTicks == 0 {
		cfg.ScanPollTicks = 5
	}
	if cfg.SlowRefreshTicks == 0 {
		cfg.SlowRefreshTicks = 15
	}
	return &Overlay{
		cfg:      cfg,
		oracle:   oracle,
		drills:   drills,
		agents:   agents,
		filter:   filter,
		kinds:    kinds,
		logger:   logger,
		byKey:    map[string]*Deposit{},
		attached: map[string][]Drill{},
		status:   map[string]*DrillStatus{},
	}
}

func (o *Overlay) SetScanLogger(l ScanLogger) { o.scanLog = l }

// NotifySurveyComplete is the edge-triggered rescan request from the host's
// discovery signal. The scan itself happens on the next Step.
func (o *Overlay) NotifySurveyComplete() { o.pendingScan = true }

// MarkFilterDirty forces the next view read to recompute, without rescanning.
func (o *Overlay) MarkFilterDirty() { o.view.invalidate() }

func (o *Overlay) LastScanTick() uint64 { return o.lastScanTick }
func (o *Overlay) ScanCount() uint64    { return o.scanCount }

// Step advances the overlay for one host tick. Scans run only on a discovery
// signal or when the fallback poll is due; cheap status fields refresh every
// step, expensive ones on the slow cadence.
func (o *Overlay) Step(tick uint64) {
	scanned := false
	if o.pendingScan || tick >= o.nextPoll {
		o.pendingScan = false
		o.nextPoll = tick + o.cfg.ScanPollTicks
		scanned = o.rescan(tick)
	}

	o.refreshFast()

	if scanned || tick >= o.nextSlow {
		o.nextSlow = tick + o.cfg.SlowRefreshTicks
		o.refreshSlow()
	}

	// A filter mutated elsewhere (bulk action, restored snapshot) shows up as
	// a cardinality change.
	o.view.checkEnabled(o.filter.EnabledCount())
}

// rescan rebuilds the deposit list wholesale. A missing grid skips the scan
// entirely and keeps the previous build.
func (o *Overlay) rescan(tick uint64) bool {
	deposits, ok := BuildDeposits(o.oracle)
	if !ok {
		return false
	}
	o.deposits = deposits
	o.lastScanTick = tick
	o.scanCount++

	o.byKey = make(map[string]*Deposit, len(deposits))
	known := map[string]struct{}{}
	cells := 0
	yieldByKind := map[string]int{}
	for _, d := range deposits {
		o.byKey[d.Key()] = d
		known[d.Kind] = struct{}{}
		cells += len(d.Cells)
		yieldByKind[d.Kind] += d.TotalYield
	}

	knownList := make([]string, 0, len(known))
	for k := range known {
		knownList = append(knownList, k)
	}
	sort.Strings(knownList)
	o.filter.EnsureDefaults(knownList)
	for _, k := range knownList {
		o.filter.AutoEnable(k)
	}

	o.attached = associate(deposits, o.liveDrills())
	o.rebuildStatus()
	o.view.invalidate()

	if o.scanLog != nil {
		if err := o.scanLog.WriteScan(ScanRecord{
			Tick:        tick,
			Deposits:    len(deposits),
			Cells:       cells,
			YieldByKind: yieldByKind,
		}); err != nil && o.logger != nil {
			o.logger.Printf("scan log: %v", err)
		}
	}
	return true
}

func (o *Overlay) liveDrills() []Drill {
	if o.drills == nil {
		return nil
	}
	return o.drills.Drills()
}

// rebuildStatus resets the per-drill status table to the current association.
func (o *Overlay) rebuildStatus() {
	o.status = map[string]*DrillStatus{}
	for key, drills := range o.attached {
		for _, dr := range drills {
			o.status[dr.ID()] = &DrillStatus{
				DrillID:    dr.ID(),
				DepositKey: key,
			}
		}
	}
}

// refreshFast updates the cheap per-drill fields every step: powered,
// forbidden and progress. Stale handles are dropped.
func (o *Overlay) refreshFast() {
	for key, drills := range o.attached {
		kept := drills[:0]
		for _, dr := range drills {
			st := o.status[dr.ID()]
			if st == nil {
				continue
			}
			if !dr.Alive() {
				delete(o.status, dr.ID())
				o.view.invalidate()
				continue
			}
			kept = append(kept, dr)
			st.Powered = dr.Powered()
			st.Forbidden = dr.Forbidden()
			st.Progress = dr.ProgressFraction()
			st.State = stateOf(st.Powered, st.WorkerID)
		}
		o.attached[key] = kept
	}
}

// refreshSlow does the full-agent scan and the radius walk for mineable
// amounts, rate-limited by SlowRefreshTicks.
func (o *Overlay) refreshSlow() {
	var agents []AgentInfo
	if o.agents != nil {
		agents = o.agents.Agents()
	}
	for key, drills := range o.attached {
		dep := o.byKey[key]
		for _, dr := range drills {
			st := o.status[dr.ID()]
			if st == nil || !dr.Alive() {
				continue
			}
			st.WorkerID = workerFor(agents, dr)
			st.MineableAmount = mineableAmount(o.oracle, dep, dr)
			st.State = stateOf(st.Powered, st.WorkerID)
		}
	}
}

// DrillStatus returns the cached status for one drill. It never recomputes;
// values change only on a scheduled refresh.
func (o *Overlay) DrillStatus(drillID string) (DrillStatus, bool) {
	st, ok := o.status[drillID]
	if !ok {
		return DrillStatus{}, false
	}
	return *st, true
}

// DepositDrillIDs lists the drill ids attached to a deposit, association order.
func (o *Overlay) DepositDrillIDs(key string) []string {
	drills := o.attached[key]
	out := make([]string, 0, len(drills))
	for _, dr := range drills {
		out = append(out, dr.ID())
	}
	return out
}

// DrillRows returns the status rows for a deposit's drill list (the expanded
// panel view), association order.
func (o *Overlay) DrillRows(key string) []DrillStatus {
	drills := o.attached[key]
	out := make([]DrillStatus, 0, len(drills))
	for _, dr := range drills {
		if st, ok := o.status[dr.ID()]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// ToggleKind flips a kind's filter state and reports the new enabled state.
func (o *Overlay) ToggleKind(kind string) bool {
	if o.filter.IsEnabled(kind) {
		o.filter.Disable(kind)
	} else {
		o.filter.Enable(kind)
	}
	o.view.invalidate()
	return o.filter.IsEnabled(kind)
}

// EnableAllKinds enables every catalog kind.
func (o *Overlay) EnableAllKinds() {
	for _, k := range o.catalogKinds() {
		o.filter.Enable(k)
	}
	o.view.invalidate()
}

// DisableAllKinds explicitly disables every catalog kind, so a later scan does
// not auto-enable them back.
func (o *Overlay) DisableAllKinds() {
	for _, k := range o.catalogKinds() {
		o.filter.Disable(k)
	}
	o.view.invalidate()
}

func (o *Overlay) catalogKinds() []string {
	if o.kinds == nil || len(o.kinds.Palette) == 0 {
		return nil
	}
	return o.kinds.Palette[1:] // palette id 0 is EMPTY
}

func (o *Overlay) Filter() *prefs.Store { return o.filter }
