package config

import (
	"os"
	"path/filepath"
	"runtime"

	"keyrepeat/internal/logging"
	"keyrepeat/internal/state"
)

// AppDirName is the per-user folder holding the settings and the repeat log.
const AppDirName = "KeyboardRepeater"

// FileName is the name of the "last session" settings file.
const FileName = "config.json"

// Dir returns the settings directory.
//
// Platform paths:
//   - Windows: %APPDATA%\KeyboardRepeater\
//   - others:  ~/.config/KeyboardRepeater/
//
// KEYREPEAT_CONFIG_DIR replaces the platform path.
func Dir() string {
	if env := os.Getenv(EnvConfigDir); env != "" {
		return env
	}
	return filepath.Join(baseDir(), AppDirName)
}

func baseDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
		return homeDir()
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// DefaultPath returns the path of the "last session" settings file.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// LogPath returns the path of the repeat log, next to the settings file.
func LogPath() string {
	return filepath.Join(Dir(), logging.LogFileName)
}

// Default returns the settings of a fresh install.
func Default() *Settings {
	return FromRecord(state.DefaultRecord())
}
