//go:build linux

package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDesktopFallsBackWithoutBus(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/keyrepeat-test-bus")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := New(logger)
	d, ok := n.(*Desktop)
	if !ok {
		t.Fatalf("expected *Desktop, got %T", n)
	}
	defer d.Close()

	if err := n.Notify("No keys selected", "Select at least one key."); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No keys selected") {
		t.Errorf("expected fallback log, got %s", buf.String())
	}
}
