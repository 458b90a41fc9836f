// Package prefs holds the persisted mineral-kind filter for the panel overlay.
//
// A kind is shown when it is in the enabled set. The explicitly-disabled set
// remembers user intent: auto-enable of newly discovered kinds must never
// override a kind the user turned off by hand.
package prefs

import "sort"

// State is the wire/disk form of the filter: two flat key lists plus the
// initialized flag. Nil lists load as empty sets (older saves).
type State struct {
	Enabled            []string `json:"enabled"`
	ExplicitlyDisabled []string `json:"explicitly_disabled"`
	Initialized        bool     `json:"initialized"`
}

// Backend persists filter state. Load returns ok=false when nothing has been
// saved yet; that is not an error.
type Backend interface {
	Load() (State, bool, error)
	Save(State) error
}

// Store is the in-session filter. It is owned by the session that created it
// and must only be touched from the world loop goroutine.
type Store struct {
	enabled     map[string]struct{}
	disabled    map[string]struct{}
	initialized bool

	backend Backend // may be nil (ephemeral session)
}

func Open(b Backend) (*Store, error) {
	s := &Store{
		enabled:  map[string]struct{}{},
		disabled: map[string]struct{}{},
		backend:  b,
	}
	if b == nil {
		return s, nil
	}
	st, ok, err := b.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		s.apply(st)
	}
	return s, nil
}

func (s *Store) apply(st State) {
	for _, k := range st.Enabled {
		s.enabled[k] = struct{}{}
	}
	for _, k := range st.ExplicitlyDisabled {
		s.disabled[k] = struct{}{}
	}
	s.initialized = st.Initialized
}

// Enable turns a kind on and clears any explicit disable: a deliberate enable
// overrides a prior deliberate disable.
func (s *Store) Enable(kind string) {
	s.enabled[kind] = struct{}{}
	delete(s.disabled, kind)
	s.flush()
}

// Disable turns a kind off and records the user's intent.
func (s *Store) Disable(kind string) {
	delete(s.enabled, kind)
	s.disabled[kind] = struct{}{}
	s.flush()
}

// AutoEnable turns a kind on unless the user explicitly disabled it. It never
// touches the explicitly-disabled set.
func (s *Store) AutoEnable(kind string) {
	if _, off := s.disabled[kind]; off {
		return
	}
	if _, on := s.enabled[kind]; on {
		return
	}
	s.enabled[kind] = struct{}{}
	s.flush()
}

func (s *Store) IsEnabled(kind string) bool {
	_, ok := s.enabled[kind]
	return ok
}

func (s *Store) IsExplicitlyDisabled(kind string) bool {
	_, ok := s.disabled[kind]
	return ok
}

func (s *Store) MarkInitialized() {
	if s.initialized {
		return
	}
	s.initialized = true
	s.flush()
}

func (s *Store) IsInitialized() bool { return s.initialized }

func (s *Store) EnabledCount() int { return len(s.enabled) }

// EnsureDefaults runs the first-session bootstrap: if the store was never
// initialized and nothing is enabled yet but kinds exist, every known kind is
// enabled once and the store marked initialized. On later calls it is a no-op;
// newly discovered kinds go through AutoEnable instead.
func (s *Store) EnsureDefaults(known []string) {
	if s.initialized || len(s.enabled) > 0 || len(known) == 0 {
		if len(s.enabled) > 0 {
			s.MarkInitialized()
		}
		return
	}
	for _, k := range known {
		s.AutoEnable(k)
	}
	s.MarkInitialized()
}

func (s *Store) Snapshot() State {
	return State{
		Enabled:            sortedKeys(s.enabled),
		ExplicitlyDisabled: sortedKeys(s.disabled),
		Initialized:        s.initialized,
	}
}

// Restore replaces the store contents wholesale (snapshot resume).
func (s *Store) Restore(st State) {
	s.enabled = map[string]struct{}{}
	s.disabled = map[string]struct{}{}
	s.initialized = false
	s.apply(st)
	s.flush()
}

func (s *Store) flush() {
	if s.backend == nil {
		return
	}
	// Persistence is best-effort; a failed write degrades to session-local
	// filters, it never breaks the panel.
	_ = s.backend.Save(s.Snapshot())
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
