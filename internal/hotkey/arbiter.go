package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/state"
)

var (
	// ErrCaptureInProgress is returned by Capture while a capture is pending.
	ErrCaptureInProgress = errors.New("hotkey: capture already in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("hotkey: arbiter closed")
)

// Which selects the start or stop binding.
type Which = state.Which

// Mode is the arbiter mode. Capturing is false while listening.
type Mode struct {
	Capturing bool
	Which     Which
}

func (m Mode) String() string {
	if m.Capturing {
		return "capturing(" + m.Which.String() + ")"
	}
	return "listening"
}

// Invoker runs fn on the controlling context (the UI thread or the CLI
// loop). It must not block and must not run fn inline.
type Invoker func(fn func())

// Actions are the callbacks fired by the start and stop hotkeys.
type Actions struct {
	Start func()
	Stop  func()
}

// CaptureFunc receives the newly captured binding on the controlling context.
type CaptureFunc func(which Which, key keycatalog.ID)

// Arbiter owns the global hook. It is either listening for the configured
// hotkeys or capturing one key press as a new binding, and never has more
// than one hook installed.
type Arbiter struct {
	newSource func() Source
	invoke    Invoker
	actions   Actions
	logger    *slog.Logger

	bindings atomic.Pointer[state.Bindings]
	epoch    atomic.Uint64
	closed   atomic.Bool
	released atomic.Bool // captured key was released before the capture hook went away

	mu        sync.Mutex
	mode      Mode
	src       Source
	cancel    context.CancelFunc
	pumpDone  chan struct{}
	onCapture CaptureFunc
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) { a.logger = l }
}

// WithBindings sets the initial bindings.
func WithBindings(b state.Bindings) Option {
	return func(a *Arbiter) { a.bindings.Store(&b) }
}

// New creates an arbiter. No hook is installed until Listen.
func New(newSource func() Source, invoke Invoker, actions Actions, opts ...Option) *Arbiter {
	a := &Arbiter{
		newSource: newSource,
		invoke:    invoke,
		actions:   actions,
	}
	a.bindings.Store(&state.Bindings{Start: state.DefaultStartHotkey, Stop: state.DefaultStopHotkey})
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	a.logger = a.logger.With("component", "hotkey")
	return a
}

// SetBindings replaces the hotkeys the listening hook reacts to.
func (a *Arbiter) SetBindings(start, stop keycatalog.ID) {
	a.bindings.Store(&state.Bindings{Start: keycatalog.Normalize(start), Stop: keycatalog.Normalize(stop)})
}

// Bindings returns the current hotkeys.
func (a *Arbiter) Bindings() state.Bindings {
	return *a.bindings.Load()
}

// Mode returns the current mode.
func (a *Arbiter) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Listen installs the listening hook. It is a no-op if already listening.
func (a *Arbiter) Listen() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return ErrClosed
	}
	if a.mode.Capturing {
		return ErrCaptureInProgress
	}
	if a.src != nil {
		return nil
	}
	return a.install(false, "")
}

// Capture tears down the listening hook and installs a one-shot hook. The
// next key press becomes the binding for which; done is then called on the
// controlling context and listening resumes.
func (a *Arbiter) Capture(which Which, done CaptureFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return ErrClosed
	}
	if a.mode.Capturing {
		return ErrCaptureInProgress
	}

	a.teardown()
	a.mode = Mode{Capturing: true, Which: which}
	a.onCapture = done
	if err := a.install(true, ""); err != nil {
		a.mode = Mode{}
		a.onCapture = nil
		if lerr := a.install(false, ""); lerr != nil {
			a.logger.Error("reinstall listening hook failed", "error", lerr)
		}
		return err
	}
	a.logger.Info("capturing hotkey", "which", which.String())
	return nil
}

// CancelCapture abandons a pending capture and resumes listening.
func (a *Arbiter) CancelCapture() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return ErrClosed
	}
	if !a.mode.Capturing {
		return nil
	}
	a.teardown()
	a.mode = Mode{}
	a.onCapture = nil
	return a.install(false, "")
}

// Close removes any hook and clears hotkey state. Callbacks already queued on
// the controlling context become no-ops.
func (a *Arbiter) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardown()
	a.mode = Mode{}
	a.onCapture = nil
	a.bindings.Store(&state.Bindings{})
	a.logger.Info("hotkey arbiter closed")
	return nil
}

// install starts a new source. suppress names a key whose presses are
// ignored until it is released, so the key just captured does not fire its
// own action through auto-repeat. Callers hold a.mu and have torn down the
// previous source.
func (a *Arbiter) install(capture bool, suppress keycatalog.ID) error {
	src := a.newSource()
	ctx, cancel := context.WithCancel(context.Background())
	events, err := src.Start(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("hotkey: install hook: %w", err)
	}

	epoch := a.epoch.Add(1)
	done := make(chan struct{})
	a.src, a.cancel, a.pumpDone = src, cancel, done

	if capture {
		a.released.Store(false)
		go a.pumpCapture(events, epoch, done)
	} else {
		go a.pumpListen(events, epoch, suppress, done)
	}
	return nil
}

// teardown stops the current source and waits for its pump to exit.
// Callers hold a.mu.
func (a *Arbiter) teardown() {
	if a.src == nil {
		return
	}
	if err := a.src.Stop(); err != nil {
		a.logger.Warn("stop hook", "error", err)
	}
	a.cancel()
	<-a.pumpDone
	a.src, a.cancel, a.pumpDone = nil, nil, nil
}

func (a *Arbiter) pumpListen(events <-chan Event, epoch uint64, suppress keycatalog.ID, done chan struct{}) {
	defer close(done)
	defer a.recoverPump(epoch)

	for ev := range events {
		if suppress != "" && ev.Key == suppress {
			if ev.Kind == Release {
				suppress = ""
			}
			continue
		}
		if ev.Kind != Press || a.closed.Load() {
			continue
		}

		b := a.Bindings()
		var action func()
		var name string
		switch ev.Key {
		case b.Start:
			action, name = a.actions.Start, "start"
		case b.Stop:
			action, name = a.actions.Stop, "stop"
		}
		if action == nil {
			continue
		}
		a.logger.Debug("hotkey pressed", "key", string(ev.Key), "action", name)
		a.invoke(func() {
			if a.closed.Load() {
				return
			}
			action()
		})
	}
}

func (a *Arbiter) pumpCapture(events <-chan Event, epoch uint64, done chan struct{}) {
	defer close(done)
	defer a.recoverPump(epoch)

	var captured keycatalog.ID
	for ev := range events {
		if captured != "" {
			if ev.Kind == Release && ev.Key == captured {
				a.released.Store(true)
			}
			continue
		}
		if ev.Kind != Press || ev.Key == "" {
			continue
		}
		captured = ev.Key
		key := ev.Key
		a.invoke(func() { a.finishCapture(epoch, key) })
	}
}

// finishCapture runs on the controlling context.
func (a *Arbiter) finishCapture(epoch uint64, key keycatalog.ID) {
	if a.closed.Load() {
		return
	}

	a.mu.Lock()
	if !a.mode.Capturing || a.epoch.Load() != epoch {
		a.mu.Unlock()
		return
	}
	which := a.mode.Which
	cb := a.onCapture

	a.teardown()
	b := a.Bindings()
	if which == state.Stop {
		b.Stop = key
	} else {
		b.Start = key
	}
	a.bindings.Store(&b)
	a.mode = Mode{}
	a.onCapture = nil
	suppress := key
	if a.released.Load() {
		suppress = ""
	}
	if err := a.install(false, suppress); err != nil {
		a.logger.Error("reinstall listening hook failed", "error", err)
	}
	a.mu.Unlock()

	a.logger.Info("hotkey captured", "which", which.String(), "key", string(key))
	if cb != nil && !a.closed.Load() {
		cb(which, key)
	}
}

// recoverPump turns a pump panic into a fresh listening hook. The reinstall
// runs on its own goroutine because teardown waits for this pump to exit.
func (a *Arbiter) recoverPump(epoch uint64) {
	pe := logging.Recovered(recover())
	if pe == nil {
		return
	}
	logging.LogPanic(a.logger, "hotkey hook panicked", pe)
	if !a.closed.Load() {
		go a.reinstall(epoch)
	}
}

// reinstall replaces the hook whose pump died. A pending capture is
// abandoned. Nothing happens if the hook was replaced or closed meanwhile.
func (a *Arbiter) reinstall(epoch uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() || a.epoch.Load() != epoch {
		return
	}
	a.teardown()
	if a.mode.Capturing {
		a.logger.Warn("hotkey capture abandoned", "which", a.mode.Which.String())
		a.mode = Mode{}
		a.onCapture = nil
	}
	if err := a.install(false, ""); err != nil {
		a.logger.Error("reinstall listening hook failed; hotkeys are off until the next Listen", "error", err)
		return
	}
	a.logger.Warn("listening hook reinstalled after panic")
}
