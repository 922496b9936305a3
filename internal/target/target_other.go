//go:build !windows

package target

// Supported is false: there is no portable way to post keyboard input to an
// unfocused X11 or Cocoa window, so targeting degrades to Foreground.
const Supported = false

func platformEnumerator() Enumerator { return nil }

// ForegroundExe is not available on this platform.
func ForegroundExe() (string, error) {
	return "", ErrNotSupported
}
