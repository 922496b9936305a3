package hotkey

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/state"
)

// queue stands in for the controlling context: invoked funcs run only when
// the test drains it.
type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) invoke(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *queue) drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

type fixture struct {
	sim    *Simulator
	q      *queue
	arb    *Arbiter
	starts atomic.Int32
	stops  atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{sim: NewSimulator(), q: &queue{}}
	f.arb = New(f.sim.NewSource, f.q.invoke, Actions{
		Start: func() { f.starts.Add(1) },
		Stop:  func() { f.stops.Add(1) },
	})
	t.Cleanup(func() { f.arb.Close() })
	return f
}

// settle waits until the hook pumps have forwarded everything sent so far.
func (f *fixture) settle(t *testing.T, wantPending int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.q.pending() >= wantPending }, time.Second, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
}

func TestListeningFiresBoundActions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Listen())
	require.NoError(t, f.arb.Listen(), "second Listen is a no-op")
	assert.Equal(t, 1, f.sim.Active())

	f.sim.Press("a")
	f.sim.Press("f9")
	f.sim.Press("f10")
	f.settle(t, 2)

	assert.Zero(t, f.starts.Load(), "action ran inside the hook")
	assert.Equal(t, 2, f.q.drain())
	assert.Equal(t, int32(1), f.starts.Load())
	assert.Equal(t, int32(1), f.stops.Load())
}

func TestCaptureFlow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Listen())

	var gotWhich Which
	var gotKey keycatalog.ID
	require.NoError(t, f.arb.Capture(state.Start, func(w Which, k keycatalog.ID) {
		gotWhich, gotKey = w, k
	}))
	assert.Equal(t, Mode{Capturing: true, Which: state.Start}, f.arb.Mode())
	assert.Equal(t, 1, f.sim.Active())

	f.sim.Press("f7")
	f.settle(t, 1)
	f.q.drain()

	assert.Equal(t, state.Start, gotWhich)
	assert.Equal(t, keycatalog.ID("f7"), gotKey)
	assert.Equal(t, keycatalog.ID("f7"), f.arb.Bindings().Start)
	assert.Equal(t, Mode{}, f.arb.Mode())
	assert.Zero(t, f.starts.Load(), "capturing must not fire actions")

	require.NoError(t, f.arb.Capture(state.Stop, nil))
	assert.Equal(t, 1, f.sim.MaxActive(), "two hooks were active at once")
	assert.Equal(t, 4, f.sim.Installs())
}

func TestConcurrentCaptureRejected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Listen())
	require.NoError(t, f.arb.Capture(state.Stop, nil))

	err := f.arb.Capture(state.Start, nil)
	assert.ErrorIs(t, err, ErrCaptureInProgress)
	assert.Equal(t, Mode{Capturing: true, Which: state.Stop}, f.arb.Mode())
	assert.ErrorIs(t, f.arb.Listen(), ErrCaptureInProgress)
}

func TestCaptureTakesFirstKeyOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Capture(state.Stop, nil))

	f.sim.Press("q")
	f.sim.Press("w")
	f.settle(t, 1)
	f.q.drain()

	assert.Equal(t, keycatalog.ID("q"), f.arb.Bindings().Stop)
}

func TestCapturedKeySuppressedUntilRelease(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Capture(state.Start, nil))

	f.sim.Send(Event{Key: "f7", Kind: Press})
	f.settle(t, 1)
	f.q.drain()
	require.Equal(t, keycatalog.ID("f7"), f.arb.Bindings().Start)

	// Auto-repeat of the held key reaches the new listening hook.
	f.sim.Send(Event{Key: "f7", Kind: Press})
	f.sim.Send(Event{Key: "f7", Kind: Release})
	time.Sleep(10 * time.Millisecond)
	f.q.drain()
	assert.Zero(t, f.starts.Load())

	f.sim.Press("f7")
	f.settle(t, 1)
	f.q.drain()
	assert.Equal(t, int32(1), f.starts.Load())
}

func TestCancelCapture(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Listen())
	require.NoError(t, f.arb.Capture(state.Start, func(Which, keycatalog.ID) {
		t.Error("capture callback after cancel")
	}))
	require.NoError(t, f.arb.CancelCapture())
	assert.Equal(t, Mode{}, f.arb.Mode())
	assert.Equal(t, 1, f.sim.Active())

	f.sim.Press("f9")
	f.settle(t, 1)
	f.q.drain()
	assert.Equal(t, int32(1), f.starts.Load())
	assert.Equal(t, keycatalog.ID("f9"), f.arb.Bindings().Start)
}

func TestNoActionAfterClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Listen())

	f.sim.Press("f9")
	f.settle(t, 1)
	require.NoError(t, f.arb.Close())
	f.q.drain()

	assert.Zero(t, f.starts.Load())
	assert.Zero(t, f.sim.Active())
	assert.Equal(t, state.Bindings{}, f.arb.Bindings())
	assert.ErrorIs(t, f.arb.Listen(), ErrClosed)
	assert.ErrorIs(t, f.arb.Capture(state.Start, nil), ErrClosed)
	assert.NoError(t, f.arb.Close())
}

func TestPendingCaptureDroppedOnClose(t *testing.T) {
	f := newFixture(t)
	called := false
	require.NoError(t, f.arb.Capture(state.Start, func(Which, keycatalog.ID) { called = true }))
	f.sim.Press("x")
	f.settle(t, 1)
	require.NoError(t, f.arb.Close())
	f.q.drain()
	assert.False(t, called)
}

func TestSetBindings(t *testing.T) {
	f := newFixture(t)
	f.arb.SetBindings("F1", "f2")
	require.NoError(t, f.arb.Listen())

	f.sim.Press("f9")
	f.sim.Press("f1")
	f.settle(t, 1)
	f.q.drain()
	assert.Equal(t, int32(1), f.starts.Load())
	assert.Equal(t, state.Bindings{Start: "f1", Stop: "f2"}, f.arb.Bindings())
}

type brokenSource struct{}

func (brokenSource) Start(context.Context) (<-chan Event, error) { return nil, ErrHookUnavailable }
func (brokenSource) Stop() error                                 { return nil }
func (brokenSource) Available() (bool, string)                   { return false, "broken" }

func TestInstallFailure(t *testing.T) {
	arb := New(func() Source { return brokenSource{} }, func(fn func()) {}, Actions{})
	err := arb.Listen()
	assert.True(t, errors.Is(err, ErrHookUnavailable))

	err = arb.Capture(state.Start, nil)
	assert.ErrorIs(t, err, ErrHookUnavailable)
	assert.Equal(t, Mode{}, arb.Mode())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "listening", Mode{}.String())
	assert.Equal(t, "capturing(stop)", Mode{Capturing: true, Which: state.Stop}.String())
}

func TestCapturedKeyReleasedDuringCapture(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.arb.Capture(state.Start, nil))

	f.sim.Press("f7")
	f.settle(t, 1)
	f.q.drain()

	f.sim.Press("f7")
	f.settle(t, 1)
	f.q.drain()
	assert.Equal(t, int32(1), f.starts.Load())
}

// flakyQueue panics on the first invoke, as if a callback hand-off failed
// inside the hook goroutine.
type flakyQueue struct {
	queue
	failed atomic.Bool
}

func (q *flakyQueue) invoke(fn func()) {
	if !q.failed.Swap(true) {
		panic("invoke failed")
	}
	q.queue.invoke(fn)
}

func TestListeningHookReinstalledAfterPanic(t *testing.T) {
	sim := NewSimulator()
	q := &flakyQueue{}
	var starts atomic.Int32
	arb := New(sim.NewSource, q.invoke, Actions{Start: func() { starts.Add(1) }})
	t.Cleanup(func() { arb.Close() })
	require.NoError(t, arb.Listen())

	sim.Press("f9")
	require.Eventually(t, func() bool { return sim.Installs() == 2 && sim.Active() == 1 },
		time.Second, time.Millisecond, "hook was not reinstalled")
	assert.Equal(t, 1, sim.MaxActive(), "old hook still active during reinstall")

	sim.Press("f9")
	require.Eventually(t, func() bool { return q.pending() == 1 }, time.Second, time.Millisecond)
	q.drain()
	assert.Equal(t, int32(1), starts.Load())
	require.NoError(t, arb.Listen(), "Listen after reinstall is a no-op")
	assert.Equal(t, 2, sim.Installs())
}

func TestCaptureAbandonedAfterPanic(t *testing.T) {
	sim := NewSimulator()
	q := &flakyQueue{}
	arb := New(sim.NewSource, q.invoke, Actions{})
	t.Cleanup(func() { arb.Close() })
	require.NoError(t, arb.Listen())

	q.failed.Store(false)
	require.NoError(t, arb.Capture(state.Start, func(Which, keycatalog.ID) {
		t.Error("capture callback ran after the hook panicked")
	}))
	sim.Press("f7")
	require.Eventually(t, func() bool { return !arb.Mode().Capturing && sim.Active() == 1 },
		time.Second, time.Millisecond, "capture hook was not replaced")

	assert.Equal(t, keycatalog.ID("f9"), arb.Bindings().Start)
	require.NoError(t, arb.Capture(state.Stop, nil), "capture after recovery")
}
