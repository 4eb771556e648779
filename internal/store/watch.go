package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn whenever the database files under dir change, coalescing
// bursts of filesystem events within debounce. It blocks until ctx is done.
// Watcher errors are logged to log (nil discards them) and do not stop it.
//
// The TUI uses it to pick up edits made by another process (a `tasklist add`
// in a second terminal) and reconcile by reloading.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn func(), log *slog.Logger) error {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	if log != nil {
		log = log.With("dir", dir)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Clean(dir)); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return watchLoop(ctx, w.Events, w.Errors, debounce, fn, log)
}

func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration, fn func(), log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// tasks.sqlite, tasks.sqlite-wal, tasks.sqlite-shm
	relevant := func(name string) bool {
		return strings.HasPrefix(filepath.Base(name), dbFileName)
	}

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
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fn()
		case err, ok := <-errs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			// Typically an event queue overflow; keep watching.
			log.Warn("store watch error", "err", err)
		}
	}
}
