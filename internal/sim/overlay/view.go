package overlay

import "sort"

// DepositView is one row of the filtered panel projection.
type DepositView struct {
	Key         string
	Kind        string
	Label       string
	Commonality float64
	Anchor      Cell
	CellCount   int
	TotalYield  int

	DrillCount       int
	ActiveDrillCount int // powered and actively worked
	DrillIDs         []string
}

// KindRow is one row of the filter panel.
type KindRow struct {
	Kind               string
	Label              string
	Commonality        float64
	Enabled            bool
	ExplicitlyDisabled bool
	Discovered         bool
}

// viewCache memoizes the filtered/sorted projection and per-kind commonality
// so display reads between invalidations cost nothing.
type viewCache struct {
	rows  []DepositView
	valid bool

	lastEnabled int
	haveEnabled bool

	commonality map[string]float64
}

func (v *viewCache) invalidate() { v.valid = false }

func (v *viewCache) checkEnabled(n int) {
	if v.haveEnabled && n != v.lastEnabled {
		v.valid = false
	}
	v.lastEnabled = n
	v.haveEnabled = true
}

// Views returns the filtered deposit rows, sorted by (kind label, anchor.X,
// anchor.Z). Idempotent between invalidations; the flood fill and full scans
// never rerun here.
func (o *Overlay) Views() []DepositView {
	o.view.checkEnabled(o.filter.EnabledCount())
	if o.view.valid {
		return o.view.rows
	}

	rows := make([]DepositView, 0, len(o.deposits))
	for _, d := range o.deposits {
		if !o.filter.IsEnabled(d.Kind) {
			continue
		}
		key := d.Key()
		row := DepositView{
			Key:         key,
			Kind:        d.Kind,
			Label:       o.labelFor(d.Kind),
			Commonality: o.commonalityFor(d.Kind),
			Anchor:      d.Anchor,
			CellCount:   len(d.Cells),
			TotalYield:  d.TotalYield,
			DrillIDs:    o.DepositDrillIDs(key),
		}
		row.DrillCount = len(row.DrillIDs)
		for _, id := range row.DrillIDs {
			if st, ok := o.status[id]; ok && st.State == StateWorking {
				row.ActiveDrillCount++
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		if rows[i].Anchor.X != rows[j].Anchor.X {
			return rows[i].Anchor.X < rows[j].Anchor.X
		}
		return rows[i].Anchor.Z < rows[j].Anchor.Z
	})

	o.view.rows = rows
	o.view.valid = true
	return rows
}

// KindRows lists every catalog kind with its filter state, label order.
func (o *Overlay) KindRows() []KindRow {
	discovered := map[string]bool{}
	for _, d := range o.deposits {
		discovered[d.Kind] = true
	}

	kinds := o.catalogKinds()
	rows := make([]KindRow, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, KindRow{
			Kind:               k,
			Label:              o.labelFor(k),
			Commonality:        o.commonalityFor(k),
			Enabled:            o.filter.IsEnabled(k),
			ExplicitlyDisabled: o.filter.IsExplicitlyDisabled(k),
			Discovered:         discovered[k],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

func (o *Overlay) labelFor(kind string) string {
	if o.kinds == nil {
		return kind
	}
	return o.kinds.Label(kind)
}

// commonalityFor memoizes catalog lookups per kind.
func (o *Overlay) commonalityFor(kind string) float64 {
	if v, ok := o.view.commonality[kind]; ok {
		return v
	}
	var v float64
	if o.kinds != nil {
		v = o.kinds.Commonality(kind)
	}
	if o.view.commonality == nil {
		o.view.commonality = map[string]float64{}
	}
	o.view.commonality[kind] = v
	return v
}
