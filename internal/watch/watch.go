// Package watch re-runs a callback when session files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ErrRunning is returned by Watch when the watcher is already running.
var ErrRunning = errors.New("watcher already running")

// Config configures a Watcher.
type Config struct {
	// Path is a session file or a directory of session files.
	Path string

	// Debounce is the quiet period after the last event before the
	// callback runs.
	Debounce time.Duration

	// Include holds doublestar patterns, relative to Path, that a changed
	// file must match. Ignored when Path is a single file.
	Include []string

	// SkipHidden ignores dot files and dot directories.
	SkipHidden bool
}

// DefaultConfig returns a config that watches YAML files below path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		Debounce:   100 * time.Millisecond,
		Include:    []string{"**/*.yaml", "**/*.yml"},
		SkipHidden: true,
	}
}

// Watcher watches a path with fsnotify and debounces change events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   Config
	debounce *Debouncer

	// file is set when Path names a single file; its directory is watched
	// so that editors replacing the file are still seen.
	file string
	root string

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for cfg.Path, which must exist.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("stat watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger,
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		root:     filepath.Clean(cfg.Path),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if !info.IsDir() {
		w.file = w.root
		w.root = filepath.Dir(w.root)
	}
	return w, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onChange
// with the path of the last changed file after each quiet period. Errors
// from onChange are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string) error) error {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	if err := w.addTree(); err != nil {
		return err
	}
	w.logger.Info("watching", "path", w.config.Path, "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) && w.file == "" {
				// New directories need their own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.hidden(event.Name) {
					if err := w.watcher.Add(event.Name); err != nil {
						w.logger.Warn("watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			name := event.Name
			w.debounce.Trigger(func() {
				if err := onChange(name); err != nil {
					w.logger.Error("change handler failed", "path", name, "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop ends a running Watch and releases the fsnotify watcher. It is safe
// to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	running := w.running
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addTree() error {
	if w.file != "" {
		return w.watcher.Add(w.root)
	}
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %q: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) hidden(path string) bool {
	return w.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// relevant reports whether event should schedule the callback.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.file != "" {
		return filepath.Clean(event.Name) == w.file
	}
	return w.Match(event.Name)
}

// Match reports whether path, below the watched directory, matches one of
// the include patterns.
func (w *Watcher) Match(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if w.config.SkipHidden && strings.HasPrefix(part, ".") {
			return false
		}
	}
	if len(w.config.Include) == 0 {
		return true
	}
	for _, pattern := range w.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Debouncer runs only the last callback triggered within an interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger schedules callback, replacing any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers never fire.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
