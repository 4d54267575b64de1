// Package watcher reports changes to data files with fsnotify and debouncing.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a fixed set of files and invokes onChange once a burst of
// changes to any of them has settled. Files that are replaced by rename
// (as editors and export scripts do) are still seen, since the parent
// directories are watched rather than the files themselves.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	onChange func(path string)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the quiet period before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for files. Empty paths are ignored.
func NewWatcher(files []string, onChange func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		files:    make(map[string]struct{}),
		onChange: onChange,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	seenDirs := make(map[string]struct{})
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Files returns the watched file paths.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); err != nil {
			_ = watcher.Close()
			return err
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return err
		}
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.Strings("dirs", w.dirs), zap.Int("files", len(w.files)))
	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if _, ok := w.files[path]; !ok {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) {
		w.schedule(path)
	}
}

// schedule restarts the shared debounce timer so that updating several data
// files together produces a single callback.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		active := w.started
		w.mu.Unlock()
		if !active {
			return
		}
		w.logger.Debug("watcher change settled", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	})
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
