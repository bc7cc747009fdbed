// Package watch re-runs a handler whenever a requirements file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// DefaultDebounce is how long a file must be quiet before the handler runs
	DefaultDebounce = 500 * time.Millisecond

	tickInterval = 50 * time.Millisecond
)

// Handler is called with the watched path once its changes settle.
type Handler func(ctx context.Context, path string) error

// Stats counts watcher activity.
type Stats struct {
	Events    int
	Triggered int
	Errors    int
	LastEvent time.Time
}

// Watcher watches a single file. The parent directory is watched so editors that
// replace the file by rename are still seen.
type Watcher struct {
	path     string
	dir      string
	debounce time.Duration
	handler  Handler
	logger   *zap.Logger

	mu      sync.Mutex
	pending time.Time
	stats   Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher for path.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &WatchError{Path: path, Message: "failed to resolve path", Cause: err}
	}
	if handler == nil {
		return nil, &WatchError{Path: path, Message: "no handler"}
	}

	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: DefaultDebounce,
		handler:  handler,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run blocks until ctx is done, calling the handler after each settled change.
// Handler errors are logged and counted; they do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return &WatchError{Path: w.path, Message: "failed to create watcher", Cause: err}
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return &WatchError{Path: w.path, Message: "failed to watch directory", Cause: err}
	}
	w.logger.Info("watching requirements file", zap.String("path", w.path))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped", zap.String("path", w.path))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.logger.Debug("requirements file changed",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()))

	now := time.Now()
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEvent = now
	w.pending = now
	w.mu.Unlock()
}

// processSettled runs the handler once the last change is older than the debounce window.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.stats.Triggered++
	w.mu.Unlock()

	if err := w.handler(ctx, w.path); err != nil {
		w.logger.Error("regeneration failed", zap.String("path", w.path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
	}
}
