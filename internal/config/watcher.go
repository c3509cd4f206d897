package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce groups the bursts of events editors emit on save
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher reloads the configuration when a watched config file changes. A
// reload produces a new *Config; existing configs are never modified.
type Watcher struct {
	names    map[string]bool
	load     func() (*Config, error)
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the project config files in rootDir and reloads them
// with Load. Call Run to receive reloads.
func NewWatcher(rootDir string, debounce time.Duration) (*Watcher, error) {
	return newWatcher(rootDir, []string{KDLFileName, TOMLFileName}, debounce, func() (*Config, error) {
		return Load(rootDir)
	})
}

// NewFileWatcher watches a single config file and reloads it with LoadFile.
// The file may not exist yet.
func NewFileWatcher(path string, debounce time.Duration) (*Watcher, error) {
	return newWatcher(filepath.Dir(path), []string{filepath.Base(path)}, debounce, func() (*Config, error) {
		return LoadFile(path)
	})
}

func newWatcher(dir string, names []string, debounce time.Duration, load func() (*Config, error)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		names:    make(map[string]bool, len(names)),
		load:     load,
		debounce: debounce,
		watcher:  watcher,
	}
	for _, name := range names {
		w.names[name] = true
	}
	return w, nil
}

// SetLoader replaces how a change is turned into a configuration, so that
// command line overrides survive a reload. Call it before Run.
func (w *Watcher) SetLoader(load func() (*Config, error)) {
	if load != nil {
		w.load = load
	}
}

// Run blocks until ctx is done, calling onReload with each freshly loaded
// configuration and onError with load or watch failures. It closes the
// underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onReload func(*Config), onError func(error)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.names[filepath.Base(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(fmt.Errorf("config watcher: %w", err))
			}

		case <-timer.C:
			cfg, err := w.load()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onReload(cfg)
		}
	}
}
