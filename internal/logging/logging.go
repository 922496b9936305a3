// Package logging provides structured logging with slog.
//
// Features:
//   - Text and JSON output
//   - Log levels (debug, info, warn, error)
//   - Component-scoped child loggers
//   - A size-rotated log file that can be switched on and off at runtime and
//     cleared at the start of each repeat run
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or JSON).
	Format Format

	// Output specifies where logs are written:
	// "stdout", "stderr", "file", "both" (stderr and file) or "none".
	Output string

	// Writer, when set, receives log output in addition to Output.
	Writer io.Writer

	// FilePath is the path to the log file when Output includes "file".
	FilePath string

	// FileEnabled is the initial state of the file output switch.
	FileEnabled bool

	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int64

	// MaxBackups is how many rotated files (name.1, name.2, ...) are kept.
	MaxBackups int

	// AddSource adds source file and line to log entries.
	AddSource bool

	// Component is the name of the component using this logger.
	Component string
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:       LevelInfo,
		Format:      FormatText,
		Output:      "stderr",
		FileEnabled: true,
		MaxSize:     10,
		MaxBackups:  3,
		Component:   "keyrepeat",
	}
}

// Logger wraps slog.Logger with the file output it writes to.
type Logger struct {
	*slog.Logger
	config  *Config
	rotator *FileRotator
	mu      sync.Mutex
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{config: cfg}
	writers, err := l.setupWriters()
	if err != nil {
		return nil, fmt.Errorf("setup writers: %w", err)
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Component != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("component", cfg.Component),
		})
	}

	l.Logger = slog.New(handler)
	return l, nil
}

func (l *Logger) setupWriters() ([]io.Writer, error) {
	var writers []io.Writer
	output := strings.ToLower(l.config.Output)

	switch output {
	case "stdout":
		writers = append(writers, os.Stdout)
	case "stderr", "both", "":
		writers = append(writers, os.Stderr)
	}

	if output == "file" || output == "both" {
		rotator, err := NewFileRotator(l.config)
		if err != nil {
			return nil, err
		}
		rotator.SetEnabled(l.config.FileEnabled)
		l.rotator = rotator
		writers = append(writers, rotator)
	}

	if l.config.Writer != nil {
		writers = append(writers, l.config.Writer)
	}
	return writers, nil
}

// WithComponent returns a child logger tagged with a component name. It
// shares the parent's file output.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger:  l.Logger.With(slog.String("component", name)),
		config:  l.config,
		rotator: l.rotator,
	}
}

// FilePath returns the log file path, or "" if the logger has no file output.
func (l *Logger) FilePath() string {
	if l.rotator == nil {
		return ""
	}
	return l.config.FilePath
}

// SetFileEnabled switches the file output on or off.
func (l *Logger) SetFileEnabled(on bool) {
	if l.rotator != nil {
		l.rotator.SetEnabled(on)
	}
}

// FileEnabled reports whether records reach the log file.
func (l *Logger) FileEnabled() bool {
	return l.rotator != nil && l.rotator.Enabled()
}

// ClearFile truncates the log file. It is a no-op without file output.
func (l *Logger) ClearFile() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Truncate()
}

// Close closes any open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// Sync flushes the log file.
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		return l.rotator.Sync()
	}
	return nil
}

// ParseLevel parses a string into a log level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
