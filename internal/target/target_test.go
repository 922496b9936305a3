package target

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	hwnd  uintptr
	image string
}

type fakeEnumerator struct {
	windows []fakeWindow
	err     error
	visited int
}

func (f *fakeEnumerator) FindWindow(match func(string) bool) (uintptr, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	for _, w := range f.windows {
		f.visited++
		if match(w.image) {
			return w.hwnd, true, nil
		}
	}
	return 0, false, nil
}

func TestResolveEmptyPathIsForeground(t *testing.T) {
	enum := &fakeEnumerator{windows: []fakeWindow{{1, "a.exe"}}}
	r := NewResolver(WithEnumerator(enum))

	got, err := r.Resolve("   ")
	require.NoError(t, err)
	assert.Equal(t, Foreground(), got)
	assert.Zero(t, enum.visited)
}

func TestResolveUnsupportedIsForeground(t *testing.T) {
	r := NewResolver(WithEnumerator(nil))
	assert.False(t, r.Supported())

	got, err := r.Resolve(`C:\Games\game.exe`)
	require.NoError(t, err)
	assert.False(t, got.IsWindow())
}

func TestResolveFirstMatch(t *testing.T) {
	enum := &fakeEnumerator{windows: []fakeWindow{
		{0x10, `C:\Windows\explorer.exe`},
		{0x20, `C:\Games\Game.exe`},
		{0x30, `C:\Games\Game.exe`},
	}}
	r := NewResolver(WithEnumerator(enum))
	r.fold = true

	got, err := r.Resolve(`c:/games/./GAME.EXE`)
	require.NoError(t, err)
	assert.Equal(t, Window(0x20), got)
	assert.Equal(t, 2, enum.visited)
}

func TestResolveNotFound(t *testing.T) {
	enum := &fakeEnumerator{windows: []fakeWindow{{0x10, `/usr/bin/xterm`}}}
	r := NewResolver(WithEnumerator(enum))

	_, err := r.Resolve("/opt/game/game")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestResolveEnumerationError(t *testing.T) {
	boom := errors.New("boom")
	r := NewResolver(WithEnumerator(&fakeEnumerator{err: boom}))

	_, err := r.Resolve("/opt/game/game")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTargetNotFound)
}

func TestNormalizeWindowsStyle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`C:\Games\Game.exe`, `c:\games\game.exe`},
		{`c:/games//game.exe`, `c:\games\game.exe`},
		{`  C:\Games\sub\..\Game.exe `, `c:\games\game.exe`},
		{`\\server\share\app.exe`, `\\server\share\app.exe`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalize(tt.in, true); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePosix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("filepath.Clean uses backslashes on windows")
	}
	assert.Equal(t, "/opt/Game/game", normalize("/opt//Game/./game", false))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "foreground", Foreground().String())
	assert.Equal(t, "window(0x1f)", Window(0x1f).String())
}
