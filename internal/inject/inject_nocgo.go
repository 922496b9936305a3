//go:build !windows && !cgo

package inject

import (
	"errors"

	"keyrepeat/internal/keycatalog"
)

var errNoCgo = errors.New("inject: built without cgo; keyboard injection disabled")

// Keyboard is a stub for builds without cgo.
type Keyboard struct{}

// New returns the stub keyboard.
func New() *Keyboard { return &Keyboard{} }

// Available reports false.
func (k *Keyboard) Available() (bool, string) {
	return false, errNoCgo.Error()
}

// CanPost is false.
func (k *Keyboard) CanPost() bool { return false }

// Press always fails.
func (k *Keyboard) Press(keycatalog.Repr) error { return errNoCgo }

// Post always fails with ErrPostUnsupported.
func (k *Keyboard) Post(uintptr, keycatalog.Repr) error { return ErrPostUnsupported }
