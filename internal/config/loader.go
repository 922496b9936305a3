package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"keyrepeat/internal/logging"
)

// DebounceDelay is how long the watcher waits after the last file event
// before reloading.
const DebounceDelay = 100 * time.Millisecond

// Load reads, migrates and validates the settings file at path. A missing
// file is an error wrapping fs.ErrNotExist. Environment overrides are not
// applied.
func Load(path string) (*Settings, error) {
	s, _, _, err := load(path)
	return s, err
}

func load(path string) (*Settings, *MigrationResult, ValidationErrors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read config: %w", err)
	}

	s, err := decode(path, data)
	if err != nil {
		return nil, nil, nil, err
	}

	migrated := Migrate(s)

	issues := ValidateSettings(s)
	if issues.HasErrors() {
		return nil, migrated, issues, fmt.Errorf("validation failed: %w", issues.Errors())
	}
	return s, migrated, issues.Warnings(), nil
}

// decode parses data in the format implied by the path's extension. Fields
// absent from the file keep their defaults, except the version, which is
// left at zero so that unversioned files are migrated.
func decode(path string, data []byte) (*Settings, error) {
	s := Default()
	s.Version = 0

	switch formatOf(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), s); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := ValidateJSON(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	}
	if s.SelectedKeys == nil {
		s.SelectedKeys = []string{}
	}
	return s, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ".toml"
	case ".yaml", ".yml":
		return ".yaml"
	default:
		return ".json"
	}
}

// Save writes s to path in the format implied by its extension. The file
// is replaced atomically: a reader sees either the old or the new content.
func Save(s *Settings, path string) error {
	out := s.Clone()
	out.Version = Version

	data, err := encode(path, out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeAtomic(path, data)
}

func encode(path string, s *Settings) ([]byte, error) {
	var buf bytes.Buffer
	switch formatOf(path) {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
	case ".yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync config: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err = os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Loader owns one settings file: it loads it, saves it and reloads it when
// it changes on disk.
type Loader struct {
	path     string
	logger   *slog.Logger
	settings *Settings
	mu       sync.RWMutex

	watcher  *fsnotify.Watcher
	onChange []func(*Settings)
	cbMu     sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error
	done     chan struct{}
	debounce time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for migrations, warnings and reloads.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithDebounce overrides DebounceDelay.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) { l.debounce = d }
}

// NewLoader creates a loader for path. An empty path means DefaultPath().
func NewLoader(path string, opts ...LoaderOption) *Loader {
	if path == "" {
		path = DefaultPath()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		path:     path,
		errChan:  make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
		debounce: DebounceDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Discard()
	}
	return l
}

// Path returns the settings file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the settings file. A missing file yields the defaults.
// Environment overrides are applied on top of what was read.
func (l *Loader) Load() (*Settings, error) {
	s, err := l.read()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.settings = s
	l.mu.Unlock()
	return s.Clone(), nil
}

func (l *Loader) read() (*Settings, error) {
	s, migrated, warnings, err := load(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no settings file, using defaults", "path", l.path)
		s = Default()
	} else if err != nil {
		return nil, err
	}

	if migrated != nil {
		l.logger.Info("settings migrated",
			"path", l.path,
			"from", migrated.FromVersion,
			"to", migrated.ToVersion,
			"changes", migrated.Changes)
	}
	for _, w := range warnings {
		l.logger.Warn("settings warning", "field", w.Field, "message", w.Message)
	}

	s.ApplyEnvOverrides()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s, nil
}

// Settings returns a copy of the most recently loaded or saved settings.
func (l *Loader) Settings() *Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.settings == nil {
		return nil
	}
	return l.settings.Clone()
}

// Save writes s to the loader's file. The watcher does not report the
// write back as a change.
func (l *Loader) Save(s *Settings) error {
	if err := Save(s, l.path); err != nil {
		return err
	}
	saved := s.Clone()
	saved.Version = Version
	l.mu.Lock()
	l.settings = saved
	l.mu.Unlock()
	return nil
}

// Clear restores the defaults and writes them to the loader's file.
func (l *Loader) Clear() (*Settings, error) {
	s := Default()
	if err := l.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Watch starts watching the settings file for changes. When the content
// changes, the settings are reloaded and callbacks registered with OnChange
// are invoked from the watcher goroutine.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: atomic saves replace the file itself.
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		watcher.Close()
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	l.watcher = watcher
	l.done = make(chan struct{})

	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	defer close(l.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-l.ctx.Done():
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(l.debounce, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}

	next, err := l.read()
	if err != nil {
		l.logger.Warn("settings reload failed", "path", l.path, "error", err)
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}

	l.mu.Lock()
	unchanged := l.settings != nil && reflect.DeepEqual(l.settings, next)
	l.settings = next
	l.mu.Unlock()
	if unchanged {
		return
	}

	l.logger.Info("settings reloaded", "path", l.path)

	l.cbMu.Lock()
	callbacks := append([]func(*Settings){}, l.onChange...)
	l.cbMu.Unlock()
	for _, cb := range callbacks {
		cb(next.Clone())
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// OnChange registers a callback to be invoked when the settings file changes.
func (l *Loader) OnChange(cb func(*Settings)) {
	l.cbMu.Lock()
	defer l.cbMu.Unlock()
	l.onChange = append(l.onChange, cb)
}

// Errors returns a channel for receiving errors that occur during watching.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	<-l.done
	return err
}
