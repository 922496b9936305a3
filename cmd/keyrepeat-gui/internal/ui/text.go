package ui

import (
	"errors"
	"fmt"
	"strings"

	"keyrepeat/internal/controller"
	"keyrepeat/internal/engine"
	"keyrepeat/internal/hotkey"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/state"
)

// Severity selects the color of the message line.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Failure
)

// Message is the single status line under the controls.
type Message struct {
	Text     string
	Severity Severity
}

const (
	unitSeconds = "seconds"
	unitMinutes = "minutes"
)

func unitKey(u state.Unit) string {
	if u == state.Minutes {
		return unitMinutes
	}
	return unitSeconds
}

func unitFromKey(key string) state.Unit {
	if key == unitMinutes {
		return state.Minutes
	}
	return state.Seconds
}

const defaultCapCells = 4

func capCells(c keycatalog.Cap) int {
	if c.Width <= 0 {
		return defaultCapCells
	}
	return c.Width
}

func hotkeyButtonText(which state.Which, st controller.Status) string {
	if st.Mode.Capturing && st.Mode.Which == which {
		return "Press a key... (click to cancel)"
	}
	key := st.Bindings.Start
	if which == state.Stop {
		key = st.Bindings.Stop
	}
	return fmt.Sprintf("%s hotkey: %s", titleCase(which.String()), keycatalog.Label(key))
}

func stateText(st controller.Status) string {
	if st.State == engine.Running {
		return "Running"
	}
	return "Stopped"
}

// errorMessage turns an action error into what the user reads.
func errorMessage(err error) Message {
	switch {
	case errors.Is(err, engine.ErrNoKeysSelected):
		return Message{controller.NoKeysBody, Warning}
	case errors.Is(err, engine.ErrAlreadyRunning):
		return Message{"Already running.", Info}
	case errors.Is(err, state.ErrKeyIsHotkey):
		return Message{"That key is a hotkey and cannot be repeated.", Warning}
	case errors.Is(err, hotkey.ErrCaptureInProgress):
		return Message{"Finish the pending hotkey capture first.", Warning}
	case errors.Is(err, controller.ErrHotkeyInUse):
		return Message{"That key is already the other hotkey.", Warning}
	default:
		return Message{err.Error(), Failure}
	}
}

// eventMessage describes a controller event. ok is false for events that
// leave the message line alone.
func eventMessage(ev controller.Event) (Message, bool) {
	switch ev.Kind {
	case controller.StateChanged:
		if ev.Err != nil {
			return Message{controller.AbortedSummary + ": " + ev.Err.Error(), Failure}, true
		}
		if ev.State == engine.Running {
			return Message{"Repeating.", Success}, true
		}
		return Message{"Stopped.", Info}, true

	case controller.HotkeyCaptured:
		if ev.Err != nil {
			return errorMessage(ev.Err), true
		}
		text := fmt.Sprintf("%s hotkey set to %s.", titleCase(ev.Which.String()), keycatalog.Label(ev.Key))
		if ev.Deselected {
			text += " It was removed from the selected keys."
		}
		return Message{text, Success}, true

	case controller.SettingsChanged:
		return Message{"Settings reloaded from disk." + droppedNote(ev.Dropped), Info}, true
	}
	return Message{}, false
}

func droppedNote(dropped []keycatalog.ID) string {
	if len(dropped) == 0 {
		return ""
	}
	labels := make([]string, len(dropped))
	for i, id := range dropped {
		labels[i] = keycatalog.Label(id)
	}
	return " Hotkeys removed from the selection: " + strings.Join(labels, ", ") + "."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
