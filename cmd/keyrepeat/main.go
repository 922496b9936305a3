// keyrepeat - press a chosen set of keys over and over
//
//	keyrepeat run          Repeat the selected keys; F9 starts, F10 stops
//	keyrepeat hotkey       Capture a new start or stop hotkey
//	keyrepeat keys         List the keys that can be repeated
//	keyrepeat config       Show, check, convert or reset settings files
//	keyrepeat log          Show the end of the repeat log
//	keyrepeat foreground   Print the executable of the foreground window
package main

import (
	"fmt"
	"os"
	"strings"

	"keyrepeat/internal/config"
	"keyrepeat/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "run":
		cmdRun()
	case "hotkey":
		cmdHotkey()
	case "keys":
		cmdKeys()
	case "config":
		cmdConfig()
	case "log":
		cmdLog()
	case "foreground":
		cmdForeground()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`keyrepeat - Keyboard Repeater

USAGE:
    keyrepeat <command> [options]

COMMANDS:
    run                 Repeat the selected keys until interrupted
    hotkey <start|stop> Press a key to make it the start or stop hotkey
    keys                List the keys that can be repeated
    config <action>     Manage settings files (path, show, validate, convert, reset)
    log                 Show the last lines of the repeat log
    foreground          Print the executable of the foreground window
    help                Show this help message

RUN OPTIONS:
    --keys a,space,f1   Keys to repeat (replaces the saved selection)
    --interval 11       Interval between cycles
    --unit seconds      Interval unit: seconds or minutes
    --target <exe>      Send keys to this program's window instead of the foreground
    --start             Start repeating immediately
    --log               Write the repeat log (cleared at every start)
    --save              Save the resulting settings as the default
    --config <file>     Settings file (.json, .toml or .yaml)
    --no-watch          Do not reload the settings file when it changes
    --metrics           Print repeat metrics on exit
    --json              Log and print metrics in JSON

HOTKEYS:
    While 'keyrepeat run' is active the start hotkey (default F9) starts
    repeating and the stop hotkey (default F10) stops it, whichever window
    has focus. Hotkeys cannot be repeated.

FILES:
    Settings: ` + config.DefaultPath() + `
    Log:      ` + config.LogPath())
}

// newLogger builds the process logger: stderr plus the repeat log file,
// which only receives records while enabled.
func newLogger(level string, fileEnabled, jsonFormat bool) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Output = "both"
	cfg.FilePath = config.LogPath()
	cfg.FileEnabled = fileEnabled
	if jsonFormat {
		cfg.Format = logging.FormatJSON
	}
	if level != "" {
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return logging.New(cfg)
}

// logLevelFor returns the level requested by the environment or, failing
// that, by the settings file at path.
func logLevelFor(path string) string {
	if v := os.Getenv(config.EnvLogLevel); v != "" {
		return v
	}
	if s, err := config.Load(path); err == nil {
		return s.LogLevel
	}
	return ""
}

func settingsPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.DefaultPath()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
