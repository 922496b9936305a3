// Package inject synthesizes keyboard input.
//
// Keyboard.Press emits a key-down then key-up into the active input stream,
// exactly as a physical key would. Keyboard.Post delivers the same pair to a
// single window's message queue without touching focus, where the platform
// supports it.
package inject

import (
	"errors"
	"fmt"
)

var (
	// ErrPostUnsupported is returned by Post on platforms without window
	// message passing.
	ErrPostUnsupported = errors.New("inject: posting to a window is not supported on this platform")

	// ErrNotRepresentable is returned for keys the backend has no code for.
	ErrNotRepresentable = errors.New("inject: key has no platform representation")
)

// Window message identifiers used by Post.
const (
	wmKeyDown = 0x0100
	wmKeyUp   = 0x0101
)

// KeyMessageLParam builds the lParam of a WM_KEYDOWN / WM_KEYUP message:
// repeat count 1 in bits 0-15, scan code in bits 16-23 and the extended flag
// in bit 24. Key-up messages also set the previous-state (30) and transition
// (31) bits.
func KeyMessageLParam(scan uint16, extended, up bool) uintptr {
	lp := uintptr(1) | uintptr(scan&0xff)<<16
	if extended {
		lp |= 1 << 24
	}
	if up {
		lp |= 1<<30 | 1<<31
	}
	return lp
}

// callError names the failing platform call.
type callError struct {
	call string
	err  error
}

func (e *callError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("inject: %s failed", e.call)
	}
	return fmt.Sprintf("inject: %s: %v", e.call, e.err)
}

func (e *callError) Unwrap() error { return e.err }
