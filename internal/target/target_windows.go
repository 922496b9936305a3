//go:build windows

package target

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Supported is true: windows accept posted keyboard messages.
const Supported = true

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

const processQueryLimitedInformation = 0x1000

type win32Enumerator struct{}

func platformEnumerator() Enumerator { return win32Enumerator{} }

// Callbacks created by NewCallback are never freed, so one callback serves
// every enumeration and the active search is handed over under enumMu.
var (
	enumMu     sync.Mutex
	enumOnce   sync.Once
	enumCB     uintptr
	enumSearch *search
)

var pathBufPool = sync.Pool{
	New: func() any {
		buf := make([]uint16, windows.MAX_LONG_PATH)
		return &buf
	},
}

type search struct {
	match func(string) bool
	hwnd  uintptr
	found bool
}

func enumProc(h uintptr, _ uintptr) uintptr {
	s := enumSearch
	if s == nil {
		return 0
	}
	if r, _, _ := procIsWindowVisible.Call(h); r == 0 {
		return 1
	}
	path, ok := windowImagePath(h)
	if !ok {
		return 1
	}
	if s.match(path) {
		s.hwnd = h
		s.found = true
		return 0
	}
	return 1
}

func (win32Enumerator) FindWindow(match func(string) bool) (uintptr, bool, error) {
	enumOnce.Do(func() { enumCB = windows.NewCallback(enumProc) })

	enumMu.Lock()
	defer enumMu.Unlock()

	s := &search{match: match}
	enumSearch = s
	defer func() { enumSearch = nil }()

	// EnumWindows reports failure when the callback stops early, so only an
	// unmatched zero return is an error.
	r, _, err := procEnumWindows.Call(enumCB, 0)
	if r == 0 && !s.found && err != windows.ERROR_SUCCESS {
		return 0, false, err
	}
	return s.hwnd, s.found, nil
}

// windowImagePath returns the executable path of the process owning h. The
// process handle is closed before returning.
func windowImagePath(h uintptr) (string, bool) {
	var pid uint32
	procGetWindowThreadProcessId.Call(h, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", false
	}
	ph, err := windows.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(ph)

	p := pathBufPool.Get().(*[]uint16)
	defer pathBufPool.Put(p)
	buf := *p
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(ph, 0, &buf[0], &size); err != nil {
		return "", false
	}
	return windows.UTF16ToString(buf[:size]), true
}

// ForegroundExe returns the executable path of the window holding focus.
func ForegroundExe() (string, error) {
	h := windows.GetForegroundWindow()
	if h == 0 {
		return "", ErrTargetNotFound
	}
	path, ok := windowImagePath(uintptr(h))
	if !ok {
		return "", ErrTargetNotFound
	}
	return path, nil
}
