package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyrewlee/ring0/internal/logging"
)

// DefaultWatchDebounce coalesces the burst of events editors produce on save.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher reloads the config file when it changes and hands the result to
// onChange. Parse failures are logged and the previous config stays in force.
type Watcher struct {
	watcher *fsnotify.Watcher
	paths   *Paths
	path    string

	onChange func(*Config)
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	closed    bool
	closeOnce sync.Once
}

// NewWatcher watches the directory holding paths.ConfigPath, so the file may
// be created after the watcher starts.
func NewWatcher(paths *Paths, onChange func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  watcher,
		paths:    paths,
		path:     filepath.Clean(paths.ConfigPath),
		onChange: onChange,
		debounce: DefaultWatchDebounce,
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the coalescing delay. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.isConfigEvent(event) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	cfg, err := LoadFrom(w.paths)
	if err != nil {
		logging.Warn("config reload failed: %v", err)
		return
	}
	logging.Info("config reloaded from %s", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops the watcher and cancels any pending reload.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
