package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watcher reloads a settings file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Settings)
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	running sync.WaitGroup
}

// Watch starts watching path. onChange is called from the watcher goroutine
// with each successfully reloaded copy. Invalid files are logged and skipped.
func Watch(path string, onChange func(*Settings)) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so renames onto path are seen.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     path,
		watcher:  fw,
		onChange: onChange,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounce(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, func() {
		w.mu.Lock()
		if w.closed || ctx.Err() != nil {
			w.mu.Unlock()
			return
		}
		w.running.Add(1)
		w.mu.Unlock()

		defer w.running.Done()
		w.reload()
	})
}

func (w *Watcher) reload() {
	s, err := LoadFile(w.path)
	if err != nil {
		slog.Error("reload config", "path", w.path, "error", err)
		return
	}
	slog.Info("config reloaded", "path", w.path)
	w.onChange(s)
}

// Close stops watching and waits for a reload in progress. onChange is not
// called after Close returns. Do not call Close while holding a lock that
// onChange takes.
func (w *Watcher) Close() error {
	w.cancel()
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	w.running.Wait()
	return err
}
