// Package config persists the repeater settings record.
//
// A settings file holds the key selection, the repeat interval and its unit,
// the two hotkeys and the target executable. JSON is the native format; TOML
// and YAML files are read and written when the path carries their extension.
package config

import (
	"os"
	"strings"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/state"
)

// Version is the current settings file version. Files without a version
// were written by releases that predate versioning.
const Version = 1

// Environment overrides.
const (
	EnvConfigDir = "KEYREPEAT_CONFIG_DIR"
	EnvLogLevel  = "KEYREPEAT_LOG_LEVEL"
	EnvTargetExe = "KEYREPEAT_TARGET_EXE"
)

// Settings is the on-disk settings record.
type Settings struct {
	Version      int      `json:"version" toml:"version" yaml:"version"`
	SelectedKeys []string `json:"selected_keys" toml:"selected_keys" yaml:"selected_keys"`
	Interval     float64  `json:"interval" toml:"interval" yaml:"interval"`
	Unit         string   `json:"unit" toml:"unit" yaml:"unit"`
	StartHotkey  string   `json:"start_hotkey" toml:"start_hotkey" yaml:"start_hotkey"`
	StopHotkey   string   `json:"stop_hotkey" toml:"stop_hotkey" yaml:"stop_hotkey"`
	TargetExe    string   `json:"target_exe" toml:"target_exe" yaml:"target_exe"`

	// LogLevel is not written by the application; it can be set by hand or
	// through KEYREPEAT_LOG_LEVEL.
	LogLevel string `json:"log_level,omitempty" toml:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// FromRecord converts an in-memory record to its file form.
func FromRecord(r state.Record) *Settings {
	keys := make([]string, 0, len(r.SelectedKeys))
	for _, id := range r.SelectedKeys {
		keys = append(keys, string(id))
	}
	return &Settings{
		Version:      Version,
		SelectedKeys: keys,
		Interval:     r.Interval,
		Unit:         r.Unit.String(),
		StartHotkey:  string(r.StartHotkey),
		StopHotkey:   string(r.StopHotkey),
		TargetExe:    strings.TrimSpace(r.TargetExe),
	}
}

// Record converts the file form to an in-memory record.
func (s *Settings) Record() state.Record {
	keys := make([]keycatalog.ID, 0, len(s.SelectedKeys))
	for _, k := range s.SelectedKeys {
		keys = append(keys, keycatalog.ID(k))
	}
	return state.Record{
		SelectedKeys: keys,
		Interval:     s.Interval,
		Unit:         state.ParseUnit(s.Unit),
		StartHotkey:  keycatalog.ID(s.StartHotkey),
		StopHotkey:   keycatalog.ID(s.StopHotkey),
		TargetExe:    strings.TrimSpace(s.TargetExe),
	}
}

// ApplyEnvOverrides applies KEYREPEAT_* environment overrides.
func (s *Settings) ApplyEnvOverrides() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvTargetExe); v != "" {
		s.TargetExe = v
	}
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	clone := *s
	clone.SelectedKeys = append([]string{}, s.SelectedKeys...)
	return &clone
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	errs := ValidateSettings(s)
	if errs.HasErrors() {
		return errs.Errors()
	}
	return nil
}
