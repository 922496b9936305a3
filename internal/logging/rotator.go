package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
)

const defaultMaxSizeMB = 10

// FileRotator is an io.Writer over a log file. When the file would exceed
// MaxSize it is shifted to name.1, name.1 to name.2 and so on, keeping at
// most MaxBackups old files. Writes are dropped while it is disabled.
type FileRotator struct {
	path       string
	maxBytes   int64
	maxBackups int
	enabled    atomic.Bool

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewFileRotator creates the log directory and opens the log file for
// appending.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("log file path not set")
	}
	mb := cfg.MaxSize
	if mb <= 0 {
		mb = defaultMaxSizeMB
	}
	r := &FileRotator{
		path:       cfg.FilePath,
		maxBytes:   mb << 20,
		maxBackups: cfg.MaxBackups,
	}
	r.enabled.Store(true)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// open (re)opens the log file. Callers hold r.mu or own r exclusively.
func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file, r.size = f, st.Size()
	return nil
}

func (r *FileRotator) SetEnabled(on bool) { r.enabled.Store(on) }
func (r *FileRotator) Enabled() bool      { return r.enabled.Load() }

// Write implements io.Writer. While disabled it reports success without
// writing.
func (r *FileRotator) Write(p []byte) (int, error) {
	if !r.enabled.Load() {
		return len(p), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		if err := r.shift(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}
	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) backup(i int) string { return r.path + "." + strconv.Itoa(i) }

// shift closes the current file and renames the backups up by one. The file
// is reopened lazily by the next write.
func (r *FileRotator) shift() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	r.file = nil

	if r.maxBackups <= 0 {
		return os.Remove(r.path)
	}
	os.Remove(r.backup(r.maxBackups))
	for i := r.maxBackups - 1; i >= 1; i-- {
		if err := os.Rename(r.backup(i), r.backup(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.Rename(r.path, r.backup(1))
}

// Truncate empties the current log file. Backups are kept.
func (r *FileRotator) Truncate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return err
		}
	}
	if err := r.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}
	r.size = 0
	return nil
}

// LogFiles returns the current log file followed by the backups that exist,
// newest first.
func (r *FileRotator) LogFiles() []string {
	files := []string{r.path}
	for i := 1; i <= r.maxBackups; i++ {
		if _, err := os.Stat(r.backup(i)); err == nil {
			files = append(files, r.backup(i))
		}
	}
	return files
}

func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}
