// Package dispatch delivers a single key press to a target.
package dispatch

import (
	"errors"
	"fmt"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/target"
)

var (
	// ErrUnknownKey is returned for ids that are not in the catalog and
	// cannot be sent as a character.
	ErrUnknownKey = errors.New("dispatch: unknown key")

	// ErrTargetingUnsupported is returned when a window target reaches a
	// backend that cannot post to windows.
	ErrTargetingUnsupported = errors.New("dispatch: window targeting unsupported")
)

// Error reports a failed dispatch of Key.
type Error struct {
	Key keycatalog.ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %q: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Injector is the platform input backend.
type Injector interface {
	Press(r keycatalog.Repr) error
	Post(hwnd uintptr, r keycatalog.Repr) error
	CanPost() bool
}

// Dispatcher sends key presses through an Injector.
type Dispatcher struct {
	inj Injector
}

// New returns a dispatcher using inj.
func New(inj Injector) *Dispatcher {
	return &Dispatcher{inj: inj}
}

// Dispatch sends a press-then-release of key to t. It returns nil when the
// events were handed to the platform and a *Error otherwise. It never panics.
func (d *Dispatcher) Dispatch(key keycatalog.ID, t target.Target) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Key: key, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	repr, known := keycatalog.Lookup(key)
	if t.IsWindow() {
		if !known {
			return &Error{Key: key, Err: ErrUnknownKey}
		}
		if !d.inj.CanPost() {
			return &Error{Key: key, Err: ErrTargetingUnsupported}
		}
		if err := d.inj.Post(t.Handle, repr); err != nil {
			return &Error{Key: key, Err: err}
		}
		return nil
	}

	if !known {
		r, ok := keycatalog.Printable(key)
		if !ok {
			return &Error{Key: key, Err: ErrUnknownKey}
		}
		repr = keycatalog.Representation(keycatalog.ID(string(r)))
	}
	if err := d.inj.Press(repr); err != nil {
		return &Error{Key: key, Err: err}
	}
	return nil
}
