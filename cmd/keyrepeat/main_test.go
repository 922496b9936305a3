package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"keyrepeat/internal/config"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, space ,f1", []string{"a", "space", "f1"}},
		{" , ,", nil},
		{"ctrl,,shift", []string{"ctrl", "shift"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSettingsPath(t *testing.T) {
	if got := settingsPath("custom.toml"); got != "custom.toml" {
		t.Errorf("settingsPath(custom.toml) = %q", got)
	}
	if got := settingsPath(""); got != config.DefaultPath() {
		t.Errorf("settingsPath(\"\") = %q, want %q", got, config.DefaultPath())
	}
}

func TestCapitalize(t *testing.T) {
	for in, want := range map[string]string{"": "", "start": "Start", "Stop": "Stop"} {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogLevelFor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvLogLevel, "")

	path := filepath.Join(dir, "settings.json")
	if got := logLevelFor(path); got != "" {
		t.Errorf("missing file: level = %q, want empty", got)
	}

	s := config.Default()
	s.LogLevel = "debug"
	if err := config.Save(s, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := logLevelFor(path); got != "debug" {
		t.Errorf("from file: level = %q, want debug", got)
	}

	t.Setenv(config.EnvLogLevel, "warn")
	if got := logLevelFor(path); got != "warn" {
		t.Errorf("from env: level = %q, want warn", got)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())
	if _, err := newLogger("loud", false, false); err == nil {
		t.Error("expected an error for an unknown level")
	}

	logger, err := newLogger("debug", false, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	defer logger.Close()
	if logger.FileEnabled() {
		t.Error("file output should start disabled")
	}
}
