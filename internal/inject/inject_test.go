package inject

import (
	"errors"
	"testing"
)

func TestKeyMessageLParam(t *testing.T) {
	tests := []struct {
		name     string
		scan     uint16
		extended bool
		up       bool
		want     uintptr
	}{
		{"a down", 0x1E, false, false, 0x001E0001},
		{"a up", 0x1E, false, true, 0xC01E0001},
		{"numpad enter down", 0x1C, true, false, 0x011C0001},
		{"right ctrl up", 0x1D, true, true, 0xC11D0001},
		{"scan masked to 8 bits", 0x1E1E, false, false, 0x001E0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyMessageLParam(tt.scan, tt.extended, tt.up); got != tt.want {
				t.Errorf("KeyMessageLParam() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestCallErrorUnwrap(t *testing.T) {
	inner := errors.New("access denied")
	err := error(&callError{call: "PostMessageW", err: inner})
	if !errors.Is(err, inner) {
		t.Error("callError does not unwrap")
	}
	if err.Error() != "inject: PostMessageW: access denied" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&callError{call: "SendInput"}).Error() != "inject: SendInput failed" {
		t.Error("unexpected message without cause")
	}
}
