package pubsite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const rebuildDebounce = 300 * time.Millisecond

// watcher turns content changes into debounced rebuild requests. At most one
// rebuild runs at a time; changes during a rebuild queue exactly one more.
type watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	req   chan struct{}
}

func newWatcher(root string, logger *slog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &watcher{fs: fw, logger: logger, req: make(chan struct{}, 1)}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// trigger schedules a rebuild after the debounce window. Repeated calls
// inside the window restart it.
func (w *watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(rebuildDebounce, func() {
		select {
		case w.req <- struct{}{}:
		default:
		}
	})
}

// run dispatches file events and calls rebuild for each debounced request
// until ctx is canceled.
func (w *watcher) run(ctx context.Context, rebuild func(context.Context)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.req:
				w.logger.Info("Change detected; rebuilding content")
				rebuild(ctx)
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	w.trigger()
}

func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				w.logger.Warn("watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports editor swap files and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}
