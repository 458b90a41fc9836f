package prefs

import (
	"reflect"
	"testing"
)

// memBackend records every save so tests can assert on persistence behavior.
type memBackend struct {
	state State
	ok    bool
	saves int
}

func (m *memBackend) Load() (State, bool, error) { return m.state, m.ok, nil }

func (m *memBackend) Save(st State) error {
	m.state = st
	m.ok = true
	m.saves++
	return nil
}

func TestStore_EnableDisableRoundTrip(t *testing.T) {
	s, err := Open(nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s.Enable("IRON")
	if !s.IsEnabled("IRON") {
		t.Fatalf("IRON not enabled")
	}

	s.Disable("IRON")
	if s.IsEnabled("IRON") {
		t.Fatalf("IRON still enabled after disable")
	}
	if !s.IsExplicitlyDisabled("IRON") {
		t.Fatalf("disable did not record intent")
	}

	// A deliberate enable clears the explicit disable.
	s.Enable("IRON")
	if !s.IsEnabled("IRON") || s.IsExplicitlyDisabled("IRON") {
		t.Fatalf("enable did not clear explicit disable: enabled=%v disabled=%v",
			s.IsEnabled("IRON"), s.IsExplicitlyDisabled("IRON"))
	}

	// Disable is idempotent.
	s.Disable("COAL")
	s.Disable("COAL")
	if s.EnabledCount() != 1 {
		t.Fatalf("enabled count=%d want 1", s.EnabledCount())
	}
}

func TestStore_AutoEnableNeverOverridesIntent(t *testing.T) {
	s, _ := Open(nil)

	s.AutoEnable("IRON")
	if !s.IsEnabled("IRON") {
		t.Fatalf("auto-enable did not enable a fresh kind")
	}

	s.Disable("COAL")
	s.AutoEnable("COAL")
	if s.IsEnabled("COAL") {
		t.Fatalf("auto-enable overrode an explicit disable")
	}
	if !s.IsExplicitlyDisabled("COAL") {
		t.Fatalf("auto-enable cleared the explicit disable")
	}
}

func TestStore_EnsureDefaultsBootstrapsOnce(t *testing.T) {
	s, _ := Open(nil)

	s.EnsureDefaults([]string{"IRON", "COAL"})
	if !s.IsEnabled("IRON") || !s.IsEnabled("COAL") {
		t.Fatalf("bootstrap did not enable known kinds")
	}
	if !s.IsInitialized() {
		t.Fatalf("bootstrap did not mark initialized")
	}

	// Later discoveries must not go through the bootstrap path.
	s.EnsureDefaults([]string{"IRON", "COAL", "SILVER"})
	if s.IsEnabled("SILVER") {
		t.Fatalf("second EnsureDefaults enabled a new kind")
	}
}

func TestStore_EnsureDefaultsSkipsEmptyCatalog(t *testing.T) {
	s, _ := Open(nil)

	// No kinds known yet: stay uninitialized so the real first scan can
	// bootstrap.
	s.EnsureDefaults(nil)
	if s.IsInitialized() {
		t.Fatalf("initialized with no kinds")
	}

	s.EnsureDefaults([]string{"IRON"})
	if !s.IsEnabled("IRON") || !s.IsInitialized() {
		t.Fatalf("bootstrap after empty call failed")
	}
}

func TestStore_EnsureDefaultsAdoptsExistingSelection(t *testing.T) {
	b := &memBackend{
		state: State{Enabled: []string{"IRON"}},
		ok:    true,
	}
	s, err := Open(b)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// An old save without the initialized flag but with a selection counts as
	// initialized; the selection is respected, not reset.
	s.EnsureDefaults([]string{"IRON", "COAL"})
	if s.IsEnabled("COAL") {
		t.Fatalf("existing selection was overwritten by bootstrap")
	}
	if !s.IsInitialized() {
		t.Fatalf("existing selection did not mark initialized")
	}
}

func TestStore_PersistsThroughBackend(t *testing.T) {
	b := &memBackend{}
	s, err := Open(b)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s.Enable("IRON")
	s.Enable("COAL")
	s.Disable("SILVER")
	if b.saves == 0 {
		t.Fatalf("no saves recorded")
	}

	want := State{
		Enabled:            []string{"COAL", "IRON"},
		ExplicitlyDisabled: []string{"SILVER"},
	}
	if !reflect.DeepEqual(b.state, want) {
		t.Fatalf("saved state=%+v want %+v", b.state, want)
	}

	// A second store on the same backend sees the same selection.
	s2, err := Open(b)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !s2.IsEnabled("IRON") || !s2.IsEnabled("COAL") || !s2.IsExplicitlyDisabled("SILVER") {
		t.Fatalf("reopened store lost state")
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s, _ := Open(nil)
	s.Enable("IRON")
	s.Disable("COAL")
	s.MarkInitialized()

	snap := s.Snapshot()

	s2, _ := Open(nil)
	s2.Enable("SILVER")
	s2.Restore(snap)
	if s2.IsEnabled("SILVER") {
		t.Fatalf("restore kept pre-restore state")
	}
	if !s2.IsEnabled("IRON") || !s2.IsExplicitlyDisabled("COAL") || !s2.IsInitialized() {
		t.Fatalf("restore dropped state: %+v", s2.Snapshot())
	}
}
