// Package target resolves the window that synthesized key events are
// delivered to.
//
// A Target is either Foreground (events go to whatever holds input focus) or
// a specific window handle. Window targets are only produced where the
// platform can post input to a window without focusing it; Supported reports
// that capability.
package target

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrTargetNotFound means a target executable was configured but no
	// visible window belongs to it. Callers skip the round rather than fall
	// back to the focused window.
	ErrTargetNotFound = errors.New("target: no visible window for executable")

	// ErrNotSupported is returned by queries the platform cannot answer.
	ErrNotSupported = errors.New("target: not supported on this platform")
)

// Kind distinguishes Foreground from Window targets.
type Kind int

const (
	KindForeground Kind = iota
	KindWindow
)

// Target is where a key event is delivered.
type Target struct {
	Kind   Kind
	Handle uintptr
}

// Foreground is the focused-window target.
func Foreground() Target { return Target{Kind: KindForeground} }

// Window addresses a specific top-level window.
func Window(h uintptr) Target { return Target{Kind: KindWindow, Handle: h} }

// IsWindow reports whether t addresses a specific window.
func (t Target) IsWindow() bool { return t.Kind == KindWindow }

func (t Target) String() string {
	if t.IsWindow() {
		return fmt.Sprintf("window(0x%x)", t.Handle)
	}
	return "foreground"
}

// Enumerator walks visible top-level windows and reports the first whose
// owning process image path satisfies match. Implementations release every
// process handle they open before returning.
type Enumerator interface {
	FindWindow(match func(imagePath string) bool) (uintptr, bool, error)
}

// Resolver maps a target executable path to a Target.
type Resolver struct {
	enum      Enumerator
	supported bool
	fold      bool
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnumerator replaces the platform window enumerator and marks window
// targeting as supported.
func WithEnumerator(e Enumerator) Option {
	return func(r *Resolver) {
		r.enum = e
		r.supported = e != nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a resolver backed by the platform enumerator.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		enum:      platformEnumerator(),
		supported: Supported,
		fold:      runtime.GOOS == "windows",
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("component", "target")
	return r
}

// Supported reports whether this resolver can produce Window targets.
func (r *Resolver) Supported() bool { return r.supported }

// Resolve returns Foreground for an empty path or when window targeting is
// unsupported. Otherwise it returns the first visible window whose process
// executable matches exePath, or ErrTargetNotFound.
func (r *Resolver) Resolve(exePath string) (Target, error) {
	want := normalize(exePath, r.fold)
	if want == "" || !r.supported {
		return Foreground(), nil
	}

	h, ok, err := r.enum.FindWindow(func(imagePath string) bool {
		return normalize(imagePath, r.fold) == want
	})
	if err != nil {
		return Target{}, fmt.Errorf("target: enumerate windows: %w", err)
	}
	if !ok {
		return Target{}, ErrTargetNotFound
	}
	return Window(h), nil
}

// NormalizePath cleans an executable path for comparison. On Windows forward
// slashes become backslashes and case is folded.
func NormalizePath(p string) string {
	return normalize(p, runtime.GOOS == "windows")
}

func normalize(p string, windowsStyle bool) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if windowsStyle {
		p = strings.ReplaceAll(p, "/", `\`)
		p = cleanWindows(p)
		return strings.ToLower(p)
	}
	return filepath.Clean(p)
}

// cleanWindows collapses repeated separators and "." / ".." elements in a
// backslash path. It works on every host so paths stay comparable in tests.
func cleanWindows(p string) string {
	prefix := ""
	switch {
	case strings.HasPrefix(p, `\\`):
		prefix = `\\`
		p = p[2:]
	case len(p) >= 2 && p[1] == ':':
		prefix = p[:2]
		p = p[2:]
		if strings.HasPrefix(p, `\`) {
			prefix += `\`
		}
	case strings.HasPrefix(p, `\`):
		prefix = `\`
	}

	var out []string
	for _, part := range strings.Split(p, `\`) {
		switch part {
		case "", ".":
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !strings.HasSuffix(prefix, `\`) {
				out = append(out, part)
			}
		default:
			out = append(out, part)
		}
	}
	return prefix + strings.Join(out, `\`)
}
