// Package controller wires the settings, the repeat engine, the hotkey
// arbiter, the settings file and the repeat log into the actions a view
// exposes: start, stop, capture a hotkey, edit the selection and persist it.
//
// Controller methods are meant to be called on the controlling context (the
// UI goroutine or a Loop). Hook and engine callbacks are marshalled there
// through the configured Invoker before they touch the view.
package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"keyrepeat/internal/config"
	"keyrepeat/internal/dispatch"
	"keyrepeat/internal/engine"
	"keyrepeat/internal/hotkey"
	"keyrepeat/internal/inject"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/metrics"
	"keyrepeat/internal/notify"
	"keyrepeat/internal/state"
	"keyrepeat/internal/target"
)

var (
	// ErrHotkeyInUse is reported when a captured key is already the other
	// hotkey. The binding is left unchanged.
	ErrHotkeyInUse = errors.New("controller: key is already bound to the other hotkey")

	// ErrNoInvoker is returned by New without an Invoker.
	ErrNoInvoker = errors.New("controller: an invoker is required")

	// ErrClosed is returned by actions after Close.
	ErrClosed = errors.New("controller: closed")
)

// Messages shown when a run cannot start or stops abnormally.
const (
	NoKeysSummary  = "No keys selected"
	NoKeysBody     = "Please select at least one key to repeat."
	AbortedSummary = "Repeat stopped"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	// StateChanged reports an engine transition. Err wraps
	// engine.ErrCycleAborted when the run ended abnormally.
	StateChanged EventKind = iota
	// HotkeyCaptured reports the end of a capture. Err is ErrHotkeyInUse
	// when the key was rejected.
	HotkeyCaptured
	// SettingsChanged reports that settings were replaced from a file.
	SettingsChanged
)

func (k EventKind) String() string {
	switch k {
	case StateChanged:
		return "state_changed"
	case HotkeyCaptured:
		return "hotkey_captured"
	case SettingsChanged:
		return "settings_changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to subscribers on the controlling context.
type Event struct {
	Kind  EventKind
	State engine.State
	Err   error

	// HotkeyCaptured
	Which      state.Which
	Key        keycatalog.ID
	Deselected bool

	// SettingsChanged
	Dropped []keycatalog.ID
}

// Status is a snapshot of everything a view shows.
type Status struct {
	State        engine.State
	Mode         hotkey.Mode
	Bindings     state.Bindings
	Selected     []keycatalog.ID
	IntervalText string
	Unit         state.Unit
	TargetExe    string
	LogEnabled   bool
	LogPath      string
}

// Config holds the controller collaborators. Only Invoke is required.
type Config struct {
	// Invoke runs functions on the controlling context.
	Invoke hotkey.Invoker

	Settings   *state.Settings
	Store      *config.Loader
	Logger     *logging.Logger
	Notifier   notify.Notifier
	Resolver   engine.Resolver
	Dispatcher engine.Dispatcher
	NewSource  func() hotkey.Source
	Metrics    *metrics.Repeater

	// Headless routes user-facing warnings to Notifier. A view with its own
	// dialogs leaves it false and reacts to returned errors.
	Headless bool

	// Watch reloads the settings file when it changes on disk.
	Watch bool
}

// Controller owns the application state and its collaborators.
type Controller struct {
	invoke   hotkey.Invoker
	settings *state.Settings
	store    *config.Loader
	logger   *logging.Logger
	log      *slog.Logger
	notifier notify.Notifier
	metrics  *metrics.Repeater
	engine   *engine.Engine
	arbiter  *hotkey.Arbiter
	headless bool
	watch    bool

	closed atomic.Bool

	mu          sync.Mutex
	subscribers []func(Event)
}

// New builds a controller. Collaborators left nil in cfg get their
// production implementations.
func New(cfg Config) (*Controller, error) {
	if cfg.Invoke == nil {
		return nil, ErrNoInvoker
	}

	c := &Controller{
		invoke:   cfg.Invoke,
		settings: cfg.Settings,
		store:    cfg.Store,
		logger:   cfg.Logger,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		headless: cfg.Headless,
		watch:    cfg.Watch,
	}

	if c.logger == nil {
		l, err := logging.New(&logging.Config{Output: "none"})
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		c.logger = l
	}
	c.log = c.logger.WithComponent("controller").Logger

	if c.settings == nil {
		c.settings = state.New()
	}
	if c.store == nil {
		c.store = config.NewLoader("", config.WithLogger(c.logger.Logger))
	}
	if c.notifier == nil {
		c.notifier = notify.New(c.logger.Logger)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewRepeater(nil)
	}

	res := cfg.Resolver
	if res == nil {
		res = target.NewResolver(target.WithLogger(c.logger.Logger))
	}
	disp := cfg.Dispatcher
	if disp == nil {
		disp = dispatch.New(inject.New())
	}
	newSource := cfg.NewSource
	if newSource == nil {
		newSource = hotkey.NewSource
	}

	c.engine = engine.New(c.settings, res, disp,
		engine.WithLogger(c.logger.Logger),
		engine.WithMetrics(c.metrics),
	)
	c.engine.OnStateChange(c.onEngineState)

	c.arbiter = hotkey.New(newSource, c.invoke, hotkey.Actions{
		Start: c.hotkeyStart,
		Stop:  c.Stop,
	},
		hotkey.WithLogger(c.logger.Logger),
		hotkey.WithBindings(c.settings.Bindings()),
	)

	return c, nil
}

// Init applies the "last session" settings file, installs the listening
// hook and, when configured, starts watching the settings file. A missing
// or unreadable settings file leaves the defaults in place.
func (c *Controller) Init() error {
	s := c.store.Settings()
	if s == nil {
		var err error
		if s, err = c.store.Load(); err != nil {
			c.log.Warn("load default settings failed", "path", c.store.Path(), "error", err)
		}
	}
	if s != nil {
		c.apply(s.Record())
	}

	if c.watch {
		c.store.OnChange(c.onSettingsFile)
		if err := c.store.Watch(); err != nil {
			c.log.Warn("watch settings file failed", "path", c.store.Path(), "error", err)
		}
	}

	if err := c.arbiter.Listen(); err != nil {
		return fmt.Errorf("install hotkey hook: %w", err)
	}
	return nil
}

// Subscribe registers fn for events. fn runs on the controlling context.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	subs := append([]func(Event){}, c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Status returns a snapshot for the view.
func (c *Controller) Status() Status {
	text, unit := c.settings.Interval()
	return Status{
		State:        c.engine.State(),
		Mode:         c.arbiter.Mode(),
		Bindings:     c.settings.Bindings(),
		Selected:     c.settings.Selected(),
		IntervalText: text,
		Unit:         unit,
		TargetExe:    c.settings.TargetExe(),
		LogEnabled:   c.logger.FileEnabled(),
		LogPath:      c.logger.FilePath(),
	}
}

// Settings returns the live settings.
func (c *Controller) Settings() *state.Settings { return c.settings }

// Metrics returns the repeat metrics.
func (c *Controller) Metrics() *metrics.Repeater { return c.metrics }

// Running reports whether a run is in progress.
func (c *Controller) Running() bool {
	return c.engine.State() == engine.Running
}

// Start begins a run. With an empty selection it returns
// engine.ErrNoKeysSelected and, when headless, tells the user. When the
// repeat log is enabled it is cleared first.
func (c *Controller) Start() error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.Running() {
		return engine.ErrAlreadyRunning
	}
	if len(c.settings.Selected()) == 0 {
		if c.headless {
			if err := c.notifier.Notify(NoKeysSummary, NoKeysBody); err != nil {
				c.log.Debug("notify failed", "error", err)
			}
		}
		return engine.ErrNoKeysSelected
	}

	if c.logger.FileEnabled() {
		if err := c.logger.ClearFile(); err != nil {
			c.log.Warn("clear repeat log failed", "error", err)
		}
	}
	return c.engine.Start()
}

func (c *Controller) hotkeyStart() {
	err := c.Start()
	switch {
	case err == nil, errors.Is(err, engine.ErrAlreadyRunning), errors.Is(err, ErrClosed):
	case errors.Is(err, engine.ErrNoKeysSelected):
		c.log.Info("start hotkey ignored: no keys selected")
	default:
		c.log.Error("start from hotkey failed", "error", err)
	}
}

// Stop ends the run, if any. Idempotent.
func (c *Controller) Stop() {
	c.engine.Stop()
}

func (c *Controller) onEngineState(s engine.State, err error) {
	if err != nil {
		c.log.Error("repeat aborted", "error", err)
		if c.headless {
			if nerr := c.notifier.Notify(AbortedSummary, err.Error()); nerr != nil {
				c.log.Debug("notify failed", "error", nerr)
			}
		}
	}
	c.invoke(func() {
		if c.closed.Load() {
			return
		}
		c.emit(Event{Kind: StateChanged, State: s, Err: err})
	})
}

// CaptureHotkey makes the next key press the start or stop hotkey. The
// result arrives as a HotkeyCaptured event. A key already bound to the
// other hotkey is rejected with ErrHotkeyInUse.
func (c *Controller) CaptureHotkey(which state.Which) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.arbiter.Capture(which, c.onCaptured)
}

func (c *Controller) onCaptured(which state.Which, key keycatalog.ID) {
	if c.closed.Load() {
		return
	}
	b := c.settings.Bindings()
	other := b.Stop
	if which == state.Stop {
		other = b.Start
	}
	if key == other {
		c.arbiter.SetBindings(b.Start, b.Stop)
		c.log.Warn("captured key is the other hotkey", "which", which.String(), "key", key)
		c.emit(Event{Kind: HotkeyCaptured, Which: which, Key: key, Err: ErrHotkeyInUse})
		return
	}

	deselected := c.settings.SetBinding(which, key)
	b = c.settings.Bindings()
	c.arbiter.SetBindings(b.Start, b.Stop)
	c.log.Info("hotkey set", "which", which.String(), "key", key, "deselected", deselected)
	c.emit(Event{Kind: HotkeyCaptured, Which: which, Key: key, Deselected: deselected})
}

// CancelCapture abandons a pending capture.
func (c *Controller) CancelCapture() error {
	return c.arbiter.CancelCapture()
}

// ToggleKey flips the selection of id and returns whether it is now
// selected. Hotkeys cannot be selected.
func (c *Controller) ToggleKey(id keycatalog.ID) (bool, error) {
	return c.settings.Toggle(id)
}

// SelectKey adds id to the selection. Selecting a selected key does nothing.
func (c *Controller) SelectKey(id keycatalog.ID) error {
	return c.settings.Select(id)
}

// ClearSelection deselects every key.
func (c *Controller) ClearSelection() {
	c.settings.ClearSelection()
}

// SetInterval stores the interval as entered. It takes effect at the next
// cycle of a running engine.
func (c *Controller) SetInterval(text string, unit state.Unit) {
	c.settings.SetInterval(text, unit)
}

// SetTargetExe sets the executable to target. Empty means the foreground
// window.
func (c *Controller) SetTargetExe(path string) {
	c.settings.SetTargetExe(path)
}

// TargetForeground sets the target to the executable of the current
// foreground window and returns it.
func (c *Controller) TargetForeground() (string, error) {
	exe, err := target.ForegroundExe()
	if err != nil {
		return "", err
	}
	c.settings.SetTargetExe(exe)
	return exe, nil
}

// SetLogEnabled switches the repeat log on or off.
func (c *Controller) SetLogEnabled(on bool) {
	c.logger.SetFileEnabled(on)
}

// LogEnabled reports whether the repeat log is written.
func (c *Controller) LogEnabled() bool {
	return c.logger.FileEnabled()
}

// SaveDefault stores the current settings as the "last session" file that
// is applied at the next startup.
func (c *Controller) SaveDefault() error {
	if err := c.store.Save(config.FromRecord(c.settings.Record())); err != nil {
		return fmt.Errorf("save default settings: %w", err)
	}
	c.log.Info("default settings saved", "path", c.store.Path())
	return nil
}

// SaveFile writes the current settings to path.
func (c *Controller) SaveFile(path string) error {
	if err := config.Save(config.FromRecord(c.settings.Record()), path); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	c.log.Info("settings saved", "path", path)
	return nil
}

// LoadFile replaces the current settings with the file at path. It returns
// the selected keys dropped because they are hotkeys.
func (c *Controller) LoadFile(path string) ([]keycatalog.ID, error) {
	s, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	dropped := c.apply(s.Record())
	c.log.Info("settings loaded", "path", path)
	return dropped, nil
}

// ResetDefaults restores the default settings in memory. The saved default
// file is left alone until SaveDefault.
func (c *Controller) ResetDefaults() {
	c.apply(state.DefaultRecord())
	c.log.Info("settings reset to defaults")
}

func (c *Controller) apply(r state.Record) []keycatalog.ID {
	dropped := c.settings.Apply(r)
	b := c.settings.Bindings()
	c.arbiter.SetBindings(b.Start, b.Stop)
	if len(dropped) > 0 {
		c.log.Warn("selected keys dropped because they are hotkeys", "keys", dropped)
	}
	return dropped
}

func (c *Controller) onSettingsFile(s *config.Settings) {
	c.invoke(func() {
		if c.closed.Load() {
			return
		}
		dropped := c.apply(s.Record())
		c.log.Info("settings reloaded from disk", "path", c.store.Path())
		c.emit(Event{Kind: SettingsChanged, State: c.engine.State(), Dropped: dropped})
	})
}

// Close stops any run, removes the hook and stops watching the settings
// file. Callbacks still queued on the controlling context become no-ops.
func (c *Controller) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.engine.Stop()

	var errs []error
	if err := c.arbiter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close hotkey arbiter: %w", err))
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close settings watcher: %w", err))
	}
	if closer, ok := c.notifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close notifier: %w", err))
		}
	}

	c.engine.Wait()
	if err := c.logger.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("sync log: %w", err))
	}
	return errors.Join(errs...)
}
