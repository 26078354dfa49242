package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/backstep/internal/logging"
)

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  *logging.Logger

	debounce  time.Duration
	overrides func(*Config)

	mu     sync.Mutex
	subs   []func(*Config)
	closed bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger for reload failures.
func WithWatchLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l.WithComponent("config")
	}
}

// WithDebounce sets how long the file must stay quiet before a reload.
// Editors often write a file in several steps.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithOverrides applies fn to every reloaded configuration before it is
// validated, so command line flags keep winning over the file.
func WithOverrides(fn func(*Config)) WatcherOption {
	return func(w *Watcher) {
		w.overrides = fn
	}
}

// NewWatcher starts watching path. The containing directory is watched so
// that files replaced by rename are still followed.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		log:      logging.Nop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Subscribe registers fn for every successful reload.
func (w *Watcher) Subscribe(fn func(*Config)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	w.subs = append(w.subs, fn)
	return nil
}

// Run delivers reloads until ctx is done or the watcher is closed. A file
// that fails to load or validate is logged and the previous settings stay
// in effect.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watching %s: %v", w.path, err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg := Default()
	err := cfg.ReadFile(w.path)
	if err == nil {
		err = cfg.applyEnv(os.LookupEnv)
	}
	if err == nil {
		if w.overrides != nil {
			w.overrides(cfg)
		}
		err = cfg.Validate()
	}
	if err != nil {
		w.log.Warn("reload ignored: %v", err)
		return
	}
	w.log.Info("reloaded %s", w.path)

	w.mu.Lock()
	subs := append(([]func(*Config))(nil), w.subs...)
	w.mu.Unlock()
	for _, fn := range subs {
		w.notify(fn, cfg)
	}
}

// notify keeps a panicking subscriber from stopping the watcher.
func (w *Watcher) notify(fn func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("config subscriber panicked: %v", r)
		}
	}()
	fn(cfg)
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.fsw.Close()
}
