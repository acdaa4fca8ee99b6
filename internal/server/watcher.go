package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 300 * time.Millisecond

// Event is one debounced filesystem change.
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher recursively watches directories and fires OnEvent after a quiet
// period, so a burst of writes triggers one rebuild.
type Watcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	onEvent func(Event)
}

// NewWatcher watches the given files and directories. Missing paths are
// skipped; directories are walked recursively.
func NewWatcher(paths []string, onEvent func(Event)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, paths: paths, onEvent: onEvent}, nil
}

// Start runs the event loop until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	for _, p := range w.paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err == nil && !info.IsDir() {
			_ = w.watcher.Add(p)
			continue
		}
		err = filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if base := filepath.Base(path); len(base) > 1 && base[0] == '.' {
					return filepath.SkipDir
				}
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			slog.Warn("watch setup", "path", p, "error", err)
		}
	}

	slog.Info("watching for changes", "paths", w.paths)

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				w.onEvent(Event{Name: event.Name, Op: event.Op})
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
