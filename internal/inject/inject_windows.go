//go:build windows

package inject

import (
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"keyrepeat/internal/keycatalog"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput      = user32.NewProc("SendInput")
	procPostMessageW   = user32.NewProc("PostMessageW")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard     = 1
	keyeventfExtended = 0x0001
	keyeventfKeyUp    = 0x0002
	keyeventfUnicode  = 0x0004

	mapvkVKToVSC = 0
)

type keyboardInput struct {
	WVK         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors INPUT on 64-bit Windows, where the union is sized by
// MOUSEINPUT.
type input struct {
	Type  uint32
	_pad1 uint32
	Ki    keyboardInput
	_pad2 uint64
}

// Keyboard injects input through SendInput and PostMessageW.
type Keyboard struct{}

// New returns the Windows keyboard.
func New() *Keyboard { return &Keyboard{} }

// Available reports whether injection can work.
func (k *Keyboard) Available() (bool, string) {
	if err := procSendInput.Find(); err != nil {
		return false, "SendInput unavailable: " + err.Error()
	}
	return true, "SendInput and PostMessageW available"
}

// CanPost is true on Windows.
func (k *Keyboard) CanPost() bool { return true }

// Press sends key-down then key-up for r to the focused window. A fallback
// representation is typed as a Unicode character.
func (k *Keyboard) Press(r keycatalog.Repr) error {
	if r.Fallback {
		return typeUnicode(r.Name)
	}
	flags := uint32(0)
	if r.Extended {
		flags |= keyeventfExtended
	}
	return sendInput([]input{
		{Type: inputKeyboard, Ki: keyboardInput{WVK: r.VK, DwFlags: flags}},
		{Type: inputKeyboard, Ki: keyboardInput{WVK: r.VK, DwFlags: flags | keyeventfKeyUp}},
	})
}

// Post sends WM_KEYDOWN then WM_KEYUP for r to hwnd. Focus is unchanged.
func (k *Keyboard) Post(hwnd uintptr, r keycatalog.Repr) error {
	if r.Fallback || r.VK == 0 {
		return ErrNotRepresentable
	}
	sc, _, _ := procMapVirtualKeyW.Call(uintptr(r.VK), mapvkVKToVSC)
	scan := uint16(sc)

	if err := postMessage(hwnd, wmKeyDown, uintptr(r.VK), KeyMessageLParam(scan, r.Extended, false)); err != nil {
		return err
	}
	return postMessage(hwnd, wmKeyUp, uintptr(r.VK), KeyMessageLParam(scan, r.Extended, true))
}

func postMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) error {
	r, _, err := procPostMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	if r == 0 {
		return &callError{call: "PostMessageW", err: err}
	}
	return nil
}

func typeUnicode(s string) error {
	var ins []input
	for _, u := range utf16.Encode([]rune(s)) {
		ins = append(ins,
			input{Type: inputKeyboard, Ki: keyboardInput{WScan: u, DwFlags: keyeventfUnicode}},
			input{Type: inputKeyboard, Ki: keyboardInput{WScan: u, DwFlags: keyeventfUnicode | keyeventfKeyUp}},
		)
	}
	if len(ins) == 0 {
		return ErrNotRepresentable
	}
	return sendInput(ins)
}

func sendInput(ins []input) error {
	ret, _, err := procSendInput.Call(
		uintptr(len(ins)),
		uintptr(unsafe.Pointer(&ins[0])),
		unsafe.Sizeof(input{}),
	)
	if int(ret) != len(ins) {
		return &callError{call: "SendInput", err: err}
	}
	return nil
}
