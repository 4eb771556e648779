// Package tui is the interactive task list: a bubbletea program over the
// tasklist controller, with store I/O on a single background worker.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tasklist-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Store  *store.Store
	Logger *slog.Logger

	Theme         string
	Watch         bool
	WatchDebounce time.Duration
	ConfirmDelete bool
}

// Run blocks until the user quits or ctx is done. Store calls already issued
// when the program exits still complete before Run returns.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("tui: store is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var changes chan struct{}
	watchDone := make(chan struct{})
	if opts.Watch {
		changes = make(chan struct{}, 1)
		go func() {
			defer close(watchDone)
			err := store.Watch(ctx, opts.Store.Dir, opts.WatchDebounce, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			}, log)
			if err != nil {
				log.Warn("store watch stopped", "err", err)
			}
		}()
	} else {
		close(watchDone)
	}

	m := newAppModel(appDeps{
		store:         opts.Store,
		dir:           opts.Store.Dir,
		log:           log,
		changes:       changes,
		confirmDelete: opts.ConfirmDelete,
	})

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		m.worker.run(ctx)
	}()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}

	m.worker.close()
	cancel()
	<-workerDone
	<-watchDone
	log.Debug("tui exited")
	return err
}
