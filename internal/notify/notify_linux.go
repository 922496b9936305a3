//go:build linux

package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Freedesktop notification service.
const (
	NotificationsService   = "org.freedesktop.Notifications"
	NotificationsPath      = "/org/freedesktop/Notifications"
	NotificationsInterface = "org.freedesktop.Notifications"
)

// ExpireTimeout is how long a notification stays up, in milliseconds.
const ExpireTimeout int32 = 5000

// Desktop sends notifications over the D-Bus session bus. The connection is
// opened on first use; when the bus or the service is missing the message
// goes to the fallback.
type Desktop struct {
	logger   *slog.Logger
	fallback Notifier

	mu   sync.Mutex
	conn *dbus.Conn
	// lastID lets a new message replace the previous one.
	lastID uint32
}

func platformNotifier(logger *slog.Logger, fallback Notifier) Notifier {
	return &Desktop{logger: logger, fallback: fallback}
}

// Notify shows a desktop notification, or hands the message to the
// fallback when that fails.
func (d *Desktop) Notify(summary, body string) error {
	if err := d.send(summary, body); err != nil {
		d.logger.Debug("desktop notification failed", "error", err)
		return d.fallback.Notify(summary, body)
	}
	return nil
}

func (d *Desktop) send(summary, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("connect session bus: %w", err)
		}
		d.conn = conn
	}

	obj := d.conn.Object(NotificationsService, dbus.ObjectPath(NotificationsPath))
	call := obj.Call(NotificationsInterface+".Notify", 0,
		AppName,
		d.lastID,
		"input-keyboard",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		ExpireTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		d.lastID = id
	}
	return nil
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
