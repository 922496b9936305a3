//go:build !windows && cgo

package inject

import (
	"github.com/go-vgo/robotgo"

	"keyrepeat/internal/keycatalog"
)

// Keyboard injects input through robotgo (XTest on X11, CGEvent on macOS).
type Keyboard struct{}

// New returns the robotgo keyboard.
func New() *Keyboard { return &Keyboard{} }

// Available reports whether injection can work.
func (k *Keyboard) Available() (bool, string) {
	return true, "robotgo keyboard injection"
}

// CanPost is false: no window message passing outside Windows.
func (k *Keyboard) CanPost() bool { return false }

// Press toggles r down then up. Fallback representations are passed to
// robotgo as the character itself.
func (k *Keyboard) Press(r keycatalog.Repr) error {
	if r.Name == "" {
		return ErrNotRepresentable
	}
	if err := robotgo.KeyToggle(r.Name, "down"); err != nil {
		return &callError{call: "KeyToggle down " + r.Name, err: err}
	}
	if err := robotgo.KeyToggle(r.Name, "up"); err != nil {
		return &callError{call: "KeyToggle up " + r.Name, err: err}
	}
	return nil
}

// Post always fails with ErrPostUnsupported.
func (k *Keyboard) Post(hwnd uintptr, r keycatalog.Repr) error {
	return ErrPostUnsupported
}
