package controller

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyrepeat/internal/config"
	"keyrepeat/internal/engine"
	"keyrepeat/internal/hotkey"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/notify"
	"keyrepeat/internal/state"
	"keyrepeat/internal/target"
)

type foregroundResolver struct{}

func (foregroundResolver) Resolve(string) (target.Target, error) {
	return target.Foreground(), nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	keys []keycatalog.ID
}

func (d *recordingDispatcher) Dispatch(k keycatalog.ID, _ target.Target) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, k)
	return nil
}

func (d *recordingDispatcher) sent() []keycatalog.ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]keycatalog.ID(nil), d.keys...)
}

type note struct{ summary, body string }

type fixture struct {
	dir     string
	loop    *Loop
	sim     *hotkey.Simulator
	disp    *recordingDispatcher
	ctrl    *Controller
	logPath string

	mu     sync.Mutex
	events []Event
	notes  []note
}

type fixtureOption func(*Config)

func watching(cfg *Config) { cfg.Watch = true }

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	t.Setenv(config.EnvTargetExe, "")
	t.Setenv(config.EnvLogLevel, "")
	dir := t.TempDir()
	return newFixtureIn(t, dir, opts...)
}

func newFixtureIn(t *testing.T, dir string, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		dir:     dir,
		loop:    NewLoop(),
		sim:     hotkey.NewSimulator(),
		disp:    &recordingDispatcher{},
		logPath: filepath.Join(dir, logging.LogFileName),
	}

	logger, err := logging.New(&logging.Config{
		Output:   "file",
		FilePath: f.logPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	cfg := Config{
		Invoke:     f.loop.Invoke,
		Store:      config.NewLoader(filepath.Join(dir, config.FileName), config.WithDebounce(20*time.Millisecond)),
		Logger:     logger,
		Resolver:   foregroundResolver{},
		Dispatcher: f.disp,
		NewSource:  f.sim.NewSource,
		Headless:   true,
		Notifier: notify.Func(func(summary, body string) error {
			f.mu.Lock()
			f.notes = append(f.notes, note{summary, body})
			f.mu.Unlock()
			return nil
		}),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	f.ctrl, err = New(cfg)
	require.NoError(t, err)
	f.ctrl.Subscribe(func(ev Event) {
		f.mu.Lock()
		f.events = append(f.events, ev)
		f.mu.Unlock()
	})
	t.Cleanup(func() { f.ctrl.Close() })
	return f
}

func (f *fixture) eventsOf(kind EventKind) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, ev := range f.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fixture) notifications() []note {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]note(nil), f.notes...)
}

// eventually drains the loop until cond holds.
func (f *fixture) eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.loop.Drain()
		return cond()
	}, 2*time.Second, 2*time.Millisecond, msg)
}

func TestNewRequiresInvoker(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoInvoker)
}

func TestStartWithoutKeysNotifies(t *testing.T) {
	f := newFixture(t)

	err := f.ctrl.Start()
	assert.ErrorIs(t, err, engine.ErrNoKeysSelected)
	assert.False(t, f.ctrl.Running())
	assert.Equal(t, []note{{NoKeysSummary, NoKeysBody}}, f.notifications())
}

func TestStartWithoutKeysSilentWithView(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Headless = false })

	assert.ErrorIs(t, f.ctrl.Start(), engine.ErrNoKeysSelected)
	assert.Empty(t, f.notifications())
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.ToggleKey("a")
	require.NoError(t, err)
	f.ctrl.SetInterval("0.01", state.Seconds)

	require.NoError(t, f.ctrl.Start())
	assert.True(t, f.ctrl.Running())
	assert.ErrorIs(t, f.ctrl.Start(), engine.ErrAlreadyRunning)

	require.Eventually(t, func() bool { return len(f.disp.sent()) >= 2 }, 2*time.Second, time.Millisecond)
	f.ctrl.Stop()
	f.ctrl.Stop()
	assert.False(t, f.ctrl.Running())

	f.loop.Drain()
	states := f.eventsOf(StateChanged)
	require.Len(t, states, 2)
	assert.Equal(t, engine.Running, states[0].State)
	assert.Equal(t, engine.Idle, states[1].State)
	assert.NoError(t, states[1].Err)

	for _, k := range f.disp.sent() {
		assert.Equal(t, keycatalog.ID("a"), k)
	}
}

func TestHotkeysDriveEngine(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())
	_, err := f.ctrl.ToggleKey("space")
	require.NoError(t, err)

	f.sim.Press("f9")
	f.eventually(t, f.ctrl.Running, "start hotkey did not start the engine")

	f.sim.Press("f10")
	f.eventually(t, func() bool { return !f.ctrl.Running() }, "stop hotkey did not stop the engine")
}

func TestStartHotkeyWithoutKeysNotifies(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())

	f.sim.Press("f9")
	f.eventually(t, func() bool { return len(f.notifications()) == 1 }, "expected a notification")
	assert.False(t, f.ctrl.Running())
}

func TestCaptureHotkey(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())
	_, err := f.ctrl.ToggleKey("f7")
	require.NoError(t, err)

	require.NoError(t, f.ctrl.CaptureHotkey(state.Start))
	assert.True(t, f.ctrl.Status().Mode.Capturing)
	assert.ErrorIs(t, f.ctrl.CaptureHotkey(state.Stop), hotkey.ErrCaptureInProgress)

	f.sim.Press("f7")
	f.eventually(t, func() bool { return len(f.eventsOf(HotkeyCaptured)) == 1 }, "capture not reported")

	ev := f.eventsOf(HotkeyCaptured)[0]
	assert.NoError(t, ev.Err)
	assert.Equal(t, state.Start, ev.Which)
	assert.Equal(t, keycatalog.ID("f7"), ev.Key)
	assert.True(t, ev.Deselected)

	st := f.ctrl.Status()
	assert.Equal(t, state.Bindings{Start: "f7", Stop: "f10"}, st.Bindings)
	assert.Empty(t, st.Selected)
	assert.False(t, st.Mode.Capturing)
	assert.Equal(t, st.Bindings, f.ctrl.arbiter.Bindings())
}

func TestCaptureRejectsOtherHotkey(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())

	require.NoError(t, f.ctrl.CaptureHotkey(state.Start))
	f.sim.Press("f10")
	f.eventually(t, func() bool { return len(f.eventsOf(HotkeyCaptured)) == 1 }, "capture not reported")

	ev := f.eventsOf(HotkeyCaptured)[0]
	assert.ErrorIs(t, ev.Err, ErrHotkeyInUse)
	want := state.Bindings{Start: "f9", Stop: "f10"}
	assert.Equal(t, want, f.ctrl.Settings().Bindings())
	assert.Equal(t, want, f.ctrl.arbiter.Bindings())
}

func TestCancelCapture(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())
	require.NoError(t, f.ctrl.CaptureHotkey(state.Stop))
	require.NoError(t, f.ctrl.CancelCapture())
	assert.False(t, f.ctrl.Status().Mode.Capturing)
}

func TestToggleRejectsHotkey(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.ToggleKey("f9")
	assert.ErrorIs(t, err, state.ErrKeyIsHotkey)
}

func TestSelectKeyTwiceStaysSelected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.SelectKey("a"))
	require.NoError(t, f.ctrl.SelectKey("A"))
	assert.Equal(t, []keycatalog.ID{"a"}, f.ctrl.Status().Selected)

	assert.ErrorIs(t, f.ctrl.SelectKey("f10"), state.ErrKeyIsHotkey)
	assert.Equal(t, []keycatalog.ID{"a"}, f.ctrl.Status().Selected)
}

func TestSaveDefaultAppliedOnInit(t *testing.T) {
	f := newFixture(t)
	for _, k := range []keycatalog.ID{"a", "b"} {
		_, err := f.ctrl.ToggleKey(k)
		require.NoError(t, err)
	}
	f.ctrl.SetInterval("2", state.Minutes)
	f.ctrl.SetTargetExe(`C:\Games\game.exe`)
	require.NoError(t, f.ctrl.SaveDefault())

	next := newFixtureIn(t, f.dir)
	require.NoError(t, next.ctrl.Init())

	st := next.ctrl.Status()
	assert.Equal(t, []keycatalog.ID{"a", "b"}, st.Selected)
	assert.Equal(t, "2", st.IntervalText)
	assert.Equal(t, state.Minutes, st.Unit)
	assert.Equal(t, `C:\Games\game.exe`, st.TargetExe)
	assert.Equal(t, 120.0, next.ctrl.Settings().IntervalSeconds())
}

func TestInitWithBrokenDefaultKeepsDefaults(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, config.FileName), []byte("{not json"), 0600))

	require.NoError(t, f.ctrl.Init())
	assert.Equal(t, state.Bindings{Start: "f9", Stop: "f10"}, f.ctrl.Status().Bindings)
}

func TestSaveAndLoadFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "profile.yaml")

	_, err := f.ctrl.ToggleKey("w")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SaveFile(path))

	f.ctrl.ResetDefaults()
	assert.Empty(t, f.ctrl.Status().Selected)

	dropped, err := f.ctrl.LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, []keycatalog.ID{"w"}, f.ctrl.Status().Selected)
}

func TestLoadFileDropsHotkeys(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "profile.json")
	s := config.Default()
	s.SelectedKeys = []string{"f9", "a"}
	require.NoError(t, config.Save(s, path))

	dropped, err := f.ctrl.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []keycatalog.ID{"f9"}, dropped)
	assert.Equal(t, []keycatalog.ID{"a"}, f.ctrl.Status().Selected)
}

func TestLoadFileMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.LoadFile(filepath.Join(f.dir, "missing.json"))
	assert.Error(t, err)
}

func TestResetDefaults(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.ToggleKey("a")
	require.NoError(t, err)
	f.ctrl.SetInterval("5", state.Minutes)
	f.ctrl.SetTargetExe("game.exe")

	f.ctrl.ResetDefaults()

	st := f.ctrl.Status()
	assert.Empty(t, st.Selected)
	assert.Equal(t, "11", st.IntervalText)
	assert.Equal(t, state.Seconds, st.Unit)
	assert.Empty(t, st.TargetExe)
	assert.Equal(t, state.Bindings{Start: "f9", Stop: "f10"}, st.Bindings)
}

func TestStartClearsLogWhenEnabled(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetLogEnabled(true)
	assert.True(t, f.ctrl.LogEnabled())
	assert.Equal(t, f.logPath, f.ctrl.Status().LogPath)

	f.ctrl.log.Info("previous run line")
	data, err := os.ReadFile(f.logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "previous run line")

	_, err = f.ctrl.ToggleKey("a")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Start())
	f.ctrl.Stop()

	data, err = os.ReadFile(f.logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous run line")
	assert.Contains(t, string(data), "repeat started")
}

func TestLogDisabledWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetLogEnabled(false)

	_, err := f.ctrl.ToggleKey("a")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Start())
	f.ctrl.Stop()

	data, err := os.ReadFile(f.logPath)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}

func TestHotReload(t *testing.T) {
	f := newFixture(t, watching)
	require.NoError(t, f.ctrl.Init())

	s := config.Default()
	s.SelectedKeys = []string{"z"}
	s.Interval = 3
	require.NoError(t, config.Save(s, filepath.Join(f.dir, config.FileName)))

	f.eventually(t, func() bool { return len(f.eventsOf(SettingsChanged)) > 0 }, "reload not reported")
	assert.Equal(t, []keycatalog.ID{"z"}, f.ctrl.Status().Selected)
	assert.Equal(t, 3.0, f.ctrl.Settings().IntervalSeconds())
}

func TestSaveDefaultDoesNotReload(t *testing.T) {
	f := newFixture(t, watching)
	require.NoError(t, f.ctrl.Init())

	_, err := f.ctrl.ToggleKey("q")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SaveDefault())

	time.Sleep(150 * time.Millisecond)
	f.loop.Drain()
	assert.Empty(t, f.eventsOf(SettingsChanged))
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Init())
	_, err := f.ctrl.ToggleKey("a")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Start())

	require.NoError(t, f.ctrl.Close())
	require.NoError(t, f.ctrl.Close())
	assert.False(t, f.ctrl.Running())
	assert.Zero(t, f.sim.Active())
	assert.ErrorIs(t, f.ctrl.Start(), ErrClosed)

	f.loop.Drain()
	assert.Len(t, f.eventsOf(StateChanged), 0, "events queued before Close must be dropped")
}

func TestLoopRun(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ran := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		l.Invoke(func() { ran <- i })
	}
	for want := 0; want < 3; want++ {
		select {
		case got := <-ran:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("queued function did not run")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoopInvokeNeverInline(t *testing.T) {
	woken := 0
	l := NewLoop(WithWake(func() { woken++ }))

	ran := false
	l.Invoke(func() { ran = true })
	assert.False(t, ran)
	assert.Equal(t, 1, l.Pending())
	assert.Equal(t, 1, woken)

	assert.Equal(t, 1, l.Drain())
	assert.True(t, ran)
	assert.Zero(t, l.Pending())
}

func TestLoopDrainRunsNestedAndSurvivesPanic(t *testing.T) {
	l := NewLoop()
	var order []string
	l.Invoke(func() {
		order = append(order, "outer")
		l.Invoke(func() { order = append(order, "nested") })
	})
	l.Invoke(func() { panic("boom") })
	l.Invoke(func() { order = append(order, "after") })

	assert.Equal(t, 4, l.Drain())
	assert.Equal(t, []string{"outer", "after", "nested"}, order)
}
