package config

import (
	"fmt"
	"strings"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/state"
)

// MigrationResult contains the result of a settings migration.
type MigrationResult struct {
	FromVersion int
	ToVersion   int
	Changes     []string
}

// Migrate brings s up to the current version in place and canonicalizes
// the values older releases wrote differently. It returns nil when nothing
// changed.
func Migrate(s *Settings) *MigrationResult {
	result := &MigrationResult{FromVersion: s.Version, ToVersion: s.Version}

	legacy := s.Version == 0
	if legacy {
		s.Version = Version
		result.ToVersion = Version
		result.Changes = append(result.Changes, fmt.Sprintf("set version %d", Version))
	}

	if unit, ok := canonicalUnit(s.Unit, legacy); ok && unit != s.Unit {
		result.Changes = append(result.Changes, fmt.Sprintf("unit %q -> %q", s.Unit, unit))
		s.Unit = unit
	}

	s.StartHotkey = migrateHotkey(result, "start_hotkey", s.StartHotkey, state.DefaultStartHotkey)
	s.StopHotkey = migrateHotkey(result, "stop_hotkey", s.StopHotkey, state.DefaultStopHotkey)

	keys := s.SelectedKeys[:0:0]
	for _, k := range s.SelectedKeys {
		id := string(keycatalog.Normalize(keycatalog.ID(k)))
		if id != k {
			result.Changes = append(result.Changes, fmt.Sprintf("selected key %q -> %q", k, id))
		}
		keys = append(keys, id)
	}
	if keys == nil {
		keys = []string{}
	}
	s.SelectedKeys = keys

	if len(result.Changes) == 0 {
		return nil
	}
	return result
}

func migrateHotkey(result *MigrationResult, field, v string, def keycatalog.ID) string {
	id := keycatalog.Normalize(keycatalog.ID(v))
	if id == "" {
		id = def
	}
	if string(id) != v {
		result.Changes = append(result.Changes, fmt.Sprintf("%s %q -> %q", field, v, id))
	}
	return string(id)
}

// canonicalUnit maps a unit label to "Seconds" or "Minutes". Legacy files
// treat any label other than minutes as seconds; current files only accept
// the known aliases.
func canonicalUnit(label string, legacy bool) (string, bool) {
	if state.ParseUnit(label) == state.Minutes {
		return state.Minutes.String(), true
	}
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "seconds", "second", "sec", "s", "秒":
		return state.Seconds.String(), true
	}
	if legacy {
		return state.Seconds.String(), true
	}
	return label, false
}
