package state

import "keyrepeat/internal/keycatalog"

// Record is the persisted shape of Settings. Interval is expressed in Unit.
type Record struct {
	SelectedKeys []keycatalog.ID
	Interval     float64
	Unit         Unit
	StartHotkey  keycatalog.ID
	StopHotkey   keycatalog.ID
	TargetExe    string
}

// DefaultRecord is the record of a fresh install.
func DefaultRecord() Record {
	return Record{
		SelectedKeys: []keycatalog.ID{},
		Interval:     DefaultInterval,
		Unit:         Seconds,
		StartHotkey:  DefaultStartHotkey,
		StopHotkey:   DefaultStopHotkey,
	}
}

// Record captures the current settings. An invalid interval is saved as the
// fallback, expressed in the current unit.
func (s *Settings) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec := ParseInterval(s.interval, s.unit)
	if s.unit == Minutes {
		sec /= 60
	}
	keys := make([]keycatalog.ID, 0, len(s.selected))
	for id := range s.selected {
		keys = append(keys, id)
	}
	sortIDs(keys)
	return Record{
		SelectedKeys: keys,
		Interval:     sec,
		Unit:         s.unit,
		StartHotkey:  s.bindings.Start,
		StopHotkey:   s.bindings.Stop,
		TargetExe:    s.targetExe,
	}
}

// Apply replaces the settings with r. Empty hotkeys keep the defaults, and
// selected keys that collide with a hotkey are dropped. It returns the keys
// that were dropped.
func (s *Settings) Apply(r Record) (dropped []keycatalog.ID) {
	b := Bindings{Start: keycatalog.Normalize(r.StartHotkey), Stop: keycatalog.Normalize(r.StopHotkey)}
	if b.Start == "" {
		b.Start = DefaultStartHotkey
	}
	if b.Stop == "" {
		b.Stop = DefaultStopHotkey
	}

	sel := make(map[keycatalog.ID]struct{}, len(r.SelectedKeys))
	for _, id := range r.SelectedKeys {
		id = keycatalog.Normalize(id)
		if id == "" {
			continue
		}
		if b.Has(id) {
			dropped = append(dropped, id)
			continue
		}
		sel[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = sel
	s.bindings = b
	s.interval = FormatInterval(r.Interval)
	s.unit = r.Unit
	s.targetExe = r.TargetExe
	return dropped
}
