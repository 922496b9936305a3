// Package engine implements the repeat engine: a background loop that
// presses every selected key once per cycle and then waits for the
// configured interval.
//
// The engine is Idle or Running. Start launches the cycle on its own
// goroutine; Stop cancels it without waiting. The loop checks for
// cancellation between keys and during the interval wait, so a stop takes
// effect within one cycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/metrics"
	"keyrepeat/internal/state"
	"keyrepeat/internal/target"
)

var (
	// ErrNoKeysSelected is returned by Start when the selection is empty.
	ErrNoKeysSelected = errors.New("engine: no keys selected")

	// ErrAlreadyRunning is returned by Start while Running.
	ErrAlreadyRunning = errors.New("engine: already running")

	// ErrCycleAborted is reported to state observers when a run ends
	// because of an unexpected error.
	ErrCycleAborted = errors.New("engine: repeat stopped abnormally")
)

// State is the engine run state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Settings supplies the live selection, target and interval. It is read at
// every cycle.
type Settings interface {
	Selected() []keycatalog.ID
	TargetExe() string
	IntervalSeconds() float64
}

// Resolver maps the target executable to a delivery target.
type Resolver interface {
	Resolve(exePath string) (target.Target, error)
}

// Dispatcher delivers one key press.
type Dispatcher interface {
	Dispatch(key keycatalog.ID, t target.Target) error
}

// Observer is told about every state change. err is non-nil only when a run
// ended abnormally, and then wraps ErrCycleAborted.
type Observer func(s State, err error)

// Engine is the repeat engine.
type Engine struct {
	settings Settings
	resolver Resolver
	disp     Dispatcher
	logger   *slog.Logger
	metrics  *metrics.Repeater

	mu        sync.Mutex
	state     State
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The engine behaves the same without one.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Repeater) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an idle engine.
func New(settings Settings, res Resolver, disp Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		settings: settings,
		resolver: res,
		disp:     disp,
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	if e.metrics == nil {
		e.metrics = metrics.NewRepeater(nil)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// OnStateChange registers an observer. Observers run on the goroutine that
// caused the change and must not block.
func (e *Engine) OnStateChange(fn Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

// State returns the current run state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start moves Idle to Running and launches the dispatch cycle.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.state == Running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if len(e.settings.Selected()) == 0 {
		e.mu.Unlock()
		return ErrNoKeysSelected
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.gen++
	gen := e.gen
	done := make(chan struct{})
	e.state = Running
	e.cancel = cancel
	e.done = done
	observers := e.snapshotObservers()
	e.mu.Unlock()

	e.metrics.Runs.Inc()
	e.metrics.Running.Set(1)
	e.logger.Info("repeat started",
		"interval_sec", e.settings.IntervalSeconds(),
		"target_exe", e.settings.TargetExe(),
	)
	notify(observers, Running, nil)

	go e.run(ctx, gen, done)
	return nil
}

// Stop raises the halt signal and moves Running to Idle. It does not wait
// for the cycle to exit and is a no-op when Idle. Safe from any goroutine.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.state = Idle
	observers := e.snapshotObservers()
	e.mu.Unlock()

	e.metrics.Running.Set(0)
	e.logger.Info("repeat stopped")
	notify(observers, Idle, nil)
}

// Wait blocks until the most recently started cycle goroutine has exited.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (e *Engine) snapshotObservers() []Observer {
	out := make([]Observer, len(e.observers))
	copy(out, e.observers)
	return out
}

func notify(observers []Observer, s State, err error) {
	for _, fn := range observers {
		fn(s, err)
	}
}

func (e *Engine) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	defer func() {
		if pe := logging.Recovered(recover()); pe != nil {
			logging.LogPanic(e.logger, "repeat cycle panicked", pe)
			e.abort(gen, pe)
		}
	}()

	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return
		}
		if err := e.cycle(ctx, round); err != nil {
			e.logger.Error("repeat cycle failed", "round", round, "error", err)
			e.abort(gen, err)
			return
		}

		wait := state.Duration(e.settings.IntervalSeconds())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle resolves the target and presses each selected key once. Only an
// unexpected resolver error is returned; per-key failures are logged.
func (e *Engine) cycle(ctx context.Context, round int) error {
	defer e.metrics.CycleDuration.Since(time.Now())
	e.metrics.Cycles.Inc()

	exe := e.settings.TargetExe()
	t, err := e.resolver.Resolve(exe)
	if errors.Is(err, target.ErrTargetNotFound) {
		e.metrics.SkippedRounds.Inc()
		e.logger.Warn("target window not found, round skipped",
			"round", round,
			"target_exe", exe,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	keys := e.settings.Selected()
	e.metrics.SelectedKeys.Set(int64(len(keys)))
	sent := 0
	for _, k := range keys {
		if ctx.Err() != nil {
			e.logger.Debug("halt observed mid-cycle", "round", round, "sent", sent)
			return nil
		}
		if err := e.disp.Dispatch(k, t); err != nil {
			e.metrics.DispatchFailures.Inc()
			e.logger.Warn("key dispatch failed", "round", round, "key", string(k), "error", err)
			continue
		}
		sent++
		e.metrics.KeysSent.Inc()
	}

	e.logger.Info("round sent",
		"round", round,
		"keys", len(keys),
		"sent", sent,
		"target", t.String(),
	)
	return nil
}

// abort ends run gen abnormally. A run superseded by Stop and a new Start is
// left alone.
func (e *Engine) abort(gen uint64, cause error) {
	e.mu.Lock()
	if e.gen != gen || e.state != Running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.state = Idle
	observers := e.snapshotObservers()
	e.mu.Unlock()

	err := fmt.Errorf("%w: %v", ErrCycleAborted, cause)
	e.metrics.AbortedRuns.Inc()
	e.metrics.Running.Set(0)
	e.logger.Error("repeat stopped abnormally", "error", cause)
	notify(observers, Idle, err)
}
