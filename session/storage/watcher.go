package storage

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher observes the credentials file for writes made by other processes
// (another CLI invocation, a second "tab") and invokes onChange after each
// settled burst of events. The watch is on the parent directory because the
// store replaces the file by rename.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *time.Timer
}

// WatcherOption defines a function type to modify the Watcher instance.
type WatcherOption func(*Watcher)

// WithDebounce overrides the settle delay (primarily for testing).
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatcherLogger sets the logger used for watch events.
func WithWatcherLogger(logger zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher for the credentials file at path. onChange is
// called from the watcher goroutine; callers are responsible for hopping to
// their own synchronisation.
func NewWatcher(path string, onChange func(), options ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fsw,
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

// Start begins watching until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.loop(ctx)
	w.logger.Debug().Str("path", w.path).Msg("credentials watcher started")
	return nil
}

// Close stops the watcher and any pending debounce timer.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.stopPending()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.stopPending()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("credentials watcher error")
		}
	}
}

// schedule arms (or re-arms) the debounce timer so a burst of events produces
// a single onChange call.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.onChange)
}

// stopPending cancels an armed debounce timer so onChange cannot fire after
// shutdown.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}
