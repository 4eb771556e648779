// Package tasklist owns the in-memory, newest-first mirror of the task store
// and turns user gestures into store mutations plus view signals.
//
// Every gesture runs in three steps:
//
//  1. Begin*: resolve the gesture against the current mirror (on the caller's
//     single serialization point, e.g. the TUI update loop). Stale positions
//     are rejected here.
//  2. Op.Exec: perform the blocking store call, anywhere.
//  3. Apply: fold the result back into the mirror and signal the view, again on
//     the serialization point.
//
// The mirror is only mutated after the store call succeeded, so it never shows
// a state the store disagrees with once a gesture completes.
package tasklist

import (
	"context"
	"io"
	"log/slog"

	"tasklist-cli/internal/model"
)

// Store is the subset of the task store the controller needs.
type Store interface {
	Get(ctx context.Context, id int64) (model.Task, error)
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]model.Task, error)
}

// View is the rendering surface. Positions are mirror indexes.
type View interface {
	Refresh(tasks []model.Task)
	RowRemoved(pos int)
	RowChanged(pos int, t model.Task)
	ShowError(err error)
}

// Controller is not safe for concurrent use; callers serialize Begin*/Apply.
type Controller struct {
	store  Store
	view   View
	log    *slog.Logger
	mirror []model.Task
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func New(store Store, view View, opts ...Option) *Controller {
	if view == nil {
		view = nopView{}
	}
	c := &Controller{
		store: store,
		view:  view,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store returns the store the controller was built with.
func (c *Controller) Store() Store { return c.store }

// Tasks returns a copy of the mirror, newest first.
func (c *Controller) Tasks() []model.Task {
	out := make([]model.Task, len(c.mirror))
	copy(out, c.mirror)
	return out
}

func (c *Controller) Len() int { return len(c.mirror) }

// At returns the mirror entry at pos.
func (c *Controller) At(pos int) (model.Task, bool) {
	if pos < 0 || pos >= len(c.mirror) {
		return model.Task{}, false
	}
	return c.mirror[pos], true
}

// Load derives the mirror from the store. It is the startup form of Reload.
func (c *Controller) Load(ctx context.Context) error { return c.Reload(ctx) }

// Reload replaces the whole mirror with reverse(store.GetAll()) and signals a
// full refresh.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Apply(c.BeginReload().Exec(ctx, c.store))
}

// EntryClosed handles the entry form's "entry flow closed" notification. The
// form does not say what it created; the mirror is re-derived from the store.
func (c *Controller) EntryClosed(ctx context.Context) error {
	return c.Reload(ctx)
}

// SwipeDelete deletes the task at pos. A stale pos is a no-op.
func (c *Controller) SwipeDelete(ctx context.Context, pos int) error {
	op, ok := c.BeginDelete(pos)
	if !ok {
		return nil
	}
	return c.Apply(op.Exec(ctx, c.store))
}

// SwipeToggle flips completion of the task at pos. A stale pos is a no-op.
func (c *Controller) SwipeToggle(ctx context.Context, pos int) error {
	op, ok := c.BeginToggle(pos)
	if !ok {
		return nil
	}
	return c.Apply(op.Exec(ctx, c.store))
}

// Move reorders the mirror only. Manual order is not persisted: the next
// reload restores newest-first.
func (c *Controller) Move(from, to int) bool {
	n := len(c.mirror)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	t := c.mirror[from]
	if from < to {
		copy(c.mirror[from:to], c.mirror[from+1:to+1])
	} else {
		copy(c.mirror[to+1:from+1], c.mirror[to:from])
	}
	c.mirror[to] = t
	c.view.Refresh(c.Tasks())
	return true
}

// indexOf finds id in the mirror, trying hint first.
func (c *Controller) indexOf(id int64, hint int) int {
	if hint >= 0 && hint < len(c.mirror) && c.mirror[hint].ID == id {
		return hint
	}
	for i, t := range c.mirror {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func reversed(ts []model.Task) []model.Task {
	out := make([]model.Task, len(ts))
	for i, t := range ts {
		out[len(ts)-1-i] = t
	}
	return out
}

type nopView struct{}

func (nopView) Refresh([]model.Task)       {}
func (nopView) RowRemoved(int)             {}
func (nopView) RowChanged(int, model.Task) {}
func (nopView) ShowError(error)            {}
