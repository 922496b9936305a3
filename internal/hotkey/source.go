// Package hotkey observes global key presses and arbitrates between
// listening for the start/stop hotkeys and capturing a new hotkey.
//
// Platform support (global hook via gohook/libuiohook):
//   - Windows: low-level keyboard hook
//   - Linux: X11 record extension
//   - macOS: CGEventTap (requires Accessibility permission)
package hotkey

import (
	"context"
	"errors"
	"time"

	"keyrepeat/internal/keycatalog"
)

var (
	// ErrSourceRunning is returned by Source.Start on a running source.
	ErrSourceRunning = errors.New("hotkey: source already running")

	// ErrHookUnavailable is returned when no global hook can be installed.
	ErrHookUnavailable = errors.New("hotkey: global keyboard hook not available")
)

// Kind is the kind of key event.
type Kind int

const (
	Press Kind = iota
	Release
)

// Event is one observed key event.
type Event struct {
	Key     keycatalog.ID
	Kind    Kind
	Rawcode uint16
	Time    time.Time
}

// Source is a global key observation hook. At most one Source may be
// started at a time per process.
type Source interface {
	// Start installs the hook. The returned channel is closed after Stop
	// or when ctx is done.
	Start(ctx context.Context) (<-chan Event, error)

	// Stop removes the hook and returns once no more events will be sent.
	Stop() error

	// Available reports whether the hook can work on this platform with
	// current permissions.
	Available() (bool, string)
}
