package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"myfxreport/internal/config"
	"myfxreport/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Snapshot is one successfully loaded configuration.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Config   config.Config
}

// ChangeListener is called with every new snapshot.
type ChangeListener func(Snapshot)

// Watcher keeps the latest valid config for a file and reloads it on change.
// An edit that fails to load or validate is logged and the previous snapshot stays.
type Watcher struct {
	path string
	load func(string) (*config.Config, error)

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewWatcher loads path once. Call Start to begin watching.
func NewWatcher(path string) (*Watcher, error) {
	return newWatcher(path, config.Load)
}

func newWatcher(path string, load func(string) (*config.Config, error)) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config watcher requires path")
	}
	w := &Watcher{path: path, load: load}
	if err := w.reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Start watches the file until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	v := viper.New()
	v.SetConfigFile(w.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
			return
		}
		if err := w.reload(); err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		w.notify()
	})
	v.WatchConfig()
	<-ctx.Done()
	return nil
}

// Snapshot returns the current config.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

// Subscribe registers fn; it does not receive the current snapshot.
func (w *Watcher) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func (w *Watcher) reload() error {
	cfg, err := w.load(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.snapshot = Snapshot{
		Version:  w.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Config:   *cfg,
	}
	w.mu.Unlock()
	return nil
}

func (w *Watcher) notify() {
	w.mu.RLock()
	snap := w.snapshot
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.RUnlock()
	for _, fn := range listeners {
		func(cb ChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("config listener panic: %v", r)
				}
			}()
			cb(snap)
		}(fn)
	}
}
