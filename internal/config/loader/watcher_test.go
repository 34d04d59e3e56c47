package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"myfxreport/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewWatcherLoadsSnapshot(t *testing.T) {
	path := writeFile(t, "app:\n  log_level: debug\n")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	snap := w.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, "debug", snap.Config.App.LogLevel)
	assert.Equal(t, path, snap.Config.Source)
}

func TestNewWatcherRequiresPath(t *testing.T) {
	_, err := NewWatcher("  ")
	assert.Error(t, err)
}

func TestReloadKeepsPreviousOnFailure(t *testing.T) {
	calls := 0
	load := func(string) (*config.Config, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("broken yaml")
		}
		return &config.Config{App: config.AppConfig{LogLevel: "warn"}}, nil
	}
	w, err := newWatcher("x.yaml", load)
	require.NoError(t, err)

	assert.Error(t, w.reload())
	assert.Equal(t, int64(1), w.Snapshot().Version)
	assert.Equal(t, "warn", w.Snapshot().Config.App.LogLevel)
}

func TestNotifyRecoversFromListenerPanic(t *testing.T) {
	w, err := newWatcher("x.yaml", func(string) (*config.Config, error) {
		return &config.Config{}, nil
	})
	require.NoError(t, err)

	var got []int64
	w.Subscribe(func(Snapshot) { panic("boom") })
	w.Subscribe(func(s Snapshot) { got = append(got, s.Version) })
	w.Subscribe(nil)

	require.NoError(t, w.reload())
	assert.NotPanics(t, w.notify)
	assert.Equal(t, []int64{2}, got)
}

func TestStartReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "app:\n  log_level: info\n")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	var seen atomic.Value
	w.Subscribe(func(s Snapshot) { seen.Store(s.Config.App.LogLevel) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// rewrite until the watcher is armed and reports the edit
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("app:\n  log_level: warn\n"), 0o600)
		level, _ := seen.Load().(string)
		return level == "warn"
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "warn", w.Snapshot().Config.App.LogLevel)
	assert.Greater(t, w.Snapshot().Version, int64(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
