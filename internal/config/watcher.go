package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ride/internal/workerutil"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	onChange func(Config)
	debounce time.Duration

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// NewWatcher watches the directory that holds path, since editors often
// replace the file instead of writing it in place. onChange receives every
// successfully reloaded config.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch config dir %s: %w", dir, err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: reloadDebounce,
		fsw:      fsw,
	}, nil
}

// Start processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	workerutil.Go(ctx, "config-watcher", &w.wg, w.run, workerutil.RestartPolicy{})
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[WARN-CONFIG] watcher error", "error", err)
		case <-timerC:
			timerC = nil
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("[WARN-CONFIG] reload failed, keeping current settings", "path", w.path, "error", err)
		return
	}
	slog.Info("[config] reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
