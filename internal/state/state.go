// Package state holds the live, mutable settings shared by the repeat engine,
// the hotkey arbiter and the view.
//
// Settings is safe for concurrent use. Readers get copies, so the engine can
// snapshot the selection once per cycle while the view keeps editing it.
package state

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"keyrepeat/internal/keycatalog"
)

// ErrKeyIsHotkey is returned when selecting a key currently bound as a hotkey.
var ErrKeyIsHotkey = errors.New("state: key is bound as a hotkey")

// Which names one of the two hotkey bindings.
type Which int

const (
	Start Which = iota
	Stop
)

func (w Which) String() string {
	if w == Stop {
		return "stop"
	}
	return "start"
}

// Default hotkeys.
const (
	DefaultStartHotkey keycatalog.ID = "f9"
	DefaultStopHotkey  keycatalog.ID = "f10"
)

// Bindings is the (start, stop) hotkey pair.
type Bindings struct {
	Start keycatalog.ID
	Stop  keycatalog.ID
}

// Has reports whether id is either binding.
func (b Bindings) Has(id keycatalog.ID) bool {
	return id != "" && (id == b.Start || id == b.Stop)
}

// Settings is the owned state record.
type Settings struct {
	mu        sync.RWMutex
	selected  map[keycatalog.ID]struct{}
	bindings  Bindings
	targetExe string
	interval  string
	unit      Unit
}

// New returns settings with the default interval and hotkeys and nothing selected.
func New() *Settings {
	return &Settings{
		selected: make(map[keycatalog.ID]struct{}),
		bindings: Bindings{Start: DefaultStartHotkey, Stop: DefaultStopHotkey},
		interval: FormatInterval(DefaultInterval),
		unit:     Seconds,
	}
}

// Select adds id to the selection. Selecting a bound hotkey fails with
// ErrKeyIsHotkey.
func (s *Settings) Select(id keycatalog.ID) error {
	id = keycatalog.Normalize(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindings.Has(id) {
		return ErrKeyIsHotkey
	}
	s.selected[id] = struct{}{}
	return nil
}

// Deselect removes id from the selection.
func (s *Settings) Deselect(id keycatalog.ID) {
	id = keycatalog.Normalize(id)
	s.mu.Lock()
	delete(s.selected, id)
	s.mu.Unlock()
}

// Toggle flips the selection of id and reports whether it is now selected.
func (s *Settings) Toggle(id keycatalog.ID) (bool, error) {
	id = keycatalog.Normalize(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false, nil
	}
	if s.bindings.Has(id) {
		return false, ErrKeyIsHotkey
	}
	s.selected[id] = struct{}{}
	return true, nil
}

// IsSelected reports whether id is selected.
func (s *Settings) IsSelected(id keycatalog.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[keycatalog.Normalize(id)]
	return ok
}

// Selected returns a sorted snapshot of the selection.
func (s *Settings) Selected() []keycatalog.ID {
	s.mu.RLock()
	out := make([]keycatalog.ID, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sortIDs(out)
	return out
}

func sortIDs(ids []keycatalog.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// ClearSelection empties the selection.
func (s *Settings) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[keycatalog.ID]struct{})
	s.mu.Unlock()
}

// SetBinding assigns id to the given hotkey. If id was selected it is removed
// from the selection. It returns true when that happened.
func (s *Settings) SetBinding(which Which, id keycatalog.ID) (deselected bool) {
	id = keycatalog.Normalize(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if which == Stop {
		s.bindings.Stop = id
	} else {
		s.bindings.Start = id
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		deselected = true
	}
	return deselected
}

// Bindings returns the current hotkey pair.
func (s *Settings) Bindings() Bindings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings
}

// SetTargetExe sets the executable path to target. Empty disables targeting.
func (s *Settings) SetTargetExe(path string) {
	s.mu.Lock()
	s.targetExe = path
	s.mu.Unlock()
}

// TargetExe returns the configured target executable path.
func (s *Settings) TargetExe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetExe
}

// SetInterval stores the interval as entered. Invalid text is kept so the
// view can show it; IntervalSeconds applies the fallback.
func (s *Settings) SetInterval(text string, unit Unit) {
	s.mu.Lock()
	s.interval = strings.TrimSpace(text)
	s.unit = unit
	s.mu.Unlock()
}

// Interval returns the interval text and unit as entered.
func (s *Settings) Interval() (string, Unit) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval, s.unit
}

// IntervalSeconds returns the effective interval in seconds.
func (s *Settings) IntervalSeconds() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ParseInterval(s.interval, s.unit)
}
