// Package notify tells the user about conditions that need attention when
// there is no window to show them in, such as starting a run with no keys
// selected from the command line.
package notify

import (
	"log/slog"

	"keyrepeat/internal/logging"
)

// AppName is the application name shown by desktop notifications.
const AppName = "Keyboard Repeater"

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(summary, body string) error
}

// Func adapts a function to Notifier.
type Func func(summary, body string) error

// Notify calls f.
func (f Func) Notify(summary, body string) error { return f(summary, body) }

// Log writes notifications to a logger at warn level.
type Log struct {
	Logger *slog.Logger
}

// Notify logs the message.
func (n Log) Notify(summary, body string) error {
	logger := n.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger.Warn(summary, "detail", body)
	return nil
}

// New returns the desktop notifier for this platform. Messages that cannot
// be shown on the desktop are logged instead.
func New(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = logging.Discard()
	}
	fallback := Log{Logger: logger}
	if n := platformNotifier(logger, fallback); n != nil {
		return n
	}
	return fallback
}
