package controller

import (
	"context"
	"log/slog"
	"sync"

	"keyrepeat/internal/logging"
)

// Loop is a serial executor. Functions handed to Invoke run one at a time,
// in order, on whichever goroutine calls Run or Drain. It is the
// controlling context when there is no UI thread.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	wake   func()
	logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithWake sets a function called after every Invoke, for example to ask a
// UI toolkit for a new frame in which the queue is drained.
func WithWake(fn func()) LoopOption {
	return func(l *Loop) { l.wake = fn }
}

// WithLoopLogger sets the logger for panics raised by queued functions.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates an empty loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{signal: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Discard()
	}
	return l
}

// Invoke queues fn. It never blocks and never runs fn inline.
func (l *Loop) Invoke(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
	if l.wake != nil {
		l.wake()
	}
}

// Run executes queued functions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.signal:
		}
	}
}

// Drain runs everything queued so far, including functions queued while
// draining, and returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			l.run(fn)
			n++
		}
	}
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogPanic(l.logger, "queued function panicked", logging.Recovered(r))
		}
	}()
	fn()
}
