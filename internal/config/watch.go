package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of filesystem events an editor emits for
// a single save into one reload.
const watchDebounce = 500 * time.Millisecond

// OnReloadError installs a callback invoked when a watched file fails to
// reload.
func (m *Manager) OnReloadError(fn func(error)) {
	m.mu.Lock()
	m.reloadErr = fn
	m.mu.Unlock()
}

func (m *Manager) reportReloadError(err error) {
	m.mu.RLock()
	fn := m.reloadErr
	m.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// Watch reloads the configuration file whenever it changes on disk,
// notifying listeners of changed keys, and blocks until the context is
// cancelled. The parent directory is watched rather than the file itself so
// atomic rename-over saves keep being observed.
func (m *Manager) Watch(ctx context.Context) error {
	path := m.Path()
	if path == "" {
		return fmt.Errorf("%w: no config file to watch", ErrConfig)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: create watcher: %w", ErrConfig, err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("%w: watch %q: %w", ErrConfig, dir, err)
	}

	target := filepath.Clean(path)
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			if err := m.LoadFile(path); err != nil {
				// A half-written file is retried on the next event; the
				// previous configuration stays in effect.
				m.reportReloadError(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("%w: watch %q: %w", ErrConfig, dir, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
