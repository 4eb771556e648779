// Package entry is the task-creation flow. It writes new tasks to the store
// and then tells the list "entry flow closed", with no payload: the list has
// to re-read the store to learn what was created.
package entry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tasklist-cli/internal/model"
	"tasklist-cli/internal/store"
)

// Inserter is the store capability the form needs.
type Inserter interface {
	Insert(ctx context.Context, title string) (model.Task, error)
}

// ClosedFunc is the "entry flow closed" notification.
type ClosedFunc func()

// Validate trims title and rejects empty input.
func Validate(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", store.ErrInvalidInput)
	}
	return title, nil
}

type Form struct {
	insert   Inserter
	onClosed ClosedFunc
	log      *slog.Logger
}

func NewForm(ins Inserter, onClosed ClosedFunc, log *slog.Logger) *Form {
	if onClosed == nil {
		onClosed = func() {}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Form{insert: ins, onClosed: onClosed, log: log}
}

// Submit validates, inserts and, only on success, fires the closed
// notification. Invalid input never reaches the store.
func (f *Form) Submit(ctx context.Context, title string) error {
	title, err := Validate(title)
	if err != nil {
		return err
	}
	t, err := f.insert.Insert(ctx, title)
	if err != nil {
		f.log.Warn("entry insert failed", "err", err)
		return err
	}
	f.log.Debug("entry created", "id", t.ID)
	f.onClosed()
	return nil
}

// Cancel dismisses the form. Nothing is written and no notification fires.
func (f *Form) Cancel() {
	f.log.Debug("entry canceled")
}
