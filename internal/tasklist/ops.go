package tasklist

import (
	"context"
	"fmt"

	"tasklist-cli/internal/model"
)

type OpKind int

const (
	OpReload OpKind = iota
	OpDelete
	OpToggle
)

func (k OpKind) String() string {
	switch k {
	case OpReload:
		return "reload"
	case OpDelete:
		return "delete"
	case OpToggle:
		return "toggle"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is a gesture resolved against the mirror at gesture time. The target task
// is captured then; later mirror changes do not re-target it.
type Op struct {
	Kind OpKind
	Pos  int
	Task model.Task
}

// Result is the outcome of Op.Exec, to be handed to Controller.Apply. For a
// successful toggle, Op.Task is the task as written.
type Result struct {
	Op    Op
	Tasks []model.Task // reload only, ascending store order
	Err   error
}

func (c *Controller) BeginReload() Op {
	return Op{Kind: OpReload, Pos: -1}
}

// BeginDelete resolves pos to a task. ok is false for a stale position.
func (c *Controller) BeginDelete(pos int) (Op, bool) {
	t, ok := c.At(pos)
	if !ok {
		c.log.Debug("stale delete gesture discarded", "pos", pos, "len", len(c.mirror))
		return Op{}, false
	}
	return Op{Kind: OpDelete, Pos: pos, Task: t}, true
}

// BeginToggle resolves pos to a task. ok is false for a stale position.
// The flip itself happens in Exec against the stored record, so toggles
// queued before the first one is applied each see the previous one's write.
func (c *Controller) BeginToggle(pos int) (Op, bool) {
	t, ok := c.At(pos)
	if !ok {
		c.log.Debug("stale toggle gesture discarded", "pos", pos, "len", len(c.mirror))
		return Op{}, false
	}
	return Op{Kind: OpToggle, Pos: pos, Task: t}, true
}

// Exec performs the store call for op. It may block on I/O. Once issued the
// call runs to completion: cancellation of ctx is not propagated to the store.
func (op Op) Exec(ctx context.Context, store Store) Result {
	ctx = context.WithoutCancel(ctx)
	switch op.Kind {
	case OpReload:
		ts, err := store.GetAll(ctx)
		return Result{Op: op, Tasks: ts, Err: err}
	case OpDelete:
		return Result{Op: op, Err: store.Delete(ctx, op.Task.ID)}
	case OpToggle:
		cur, err := store.Get(ctx, op.Task.ID)
		if err != nil {
			return Result{Op: op, Err: err}
		}
		flipped := cur.Toggled()
		if err := store.Update(ctx, flipped); err != nil {
			return Result{Op: op, Err: err}
		}
		op.Task = flipped
		return Result{Op: op}
	default:
		return Result{Op: op, Err: fmt.Errorf("unknown op %s", op.Kind)}
	}
}

// Apply folds a finished store call into the mirror and signals the view.
// On error the mirror is left untouched and the error is surfaced to the view
// and returned.
func (c *Controller) Apply(r Result) error {
	if r.Err != nil {
		c.log.Warn("gesture failed", "op", r.Op.Kind.String(), "id", r.Op.Task.ID, "err", r.Err)
		c.view.ShowError(fmt.Errorf("%s: %w", r.Op.Kind, r.Err))
		return r.Err
	}

	switch r.Op.Kind {
	case OpReload:
		c.mirror = reversed(r.Tasks)
		c.log.Debug("mirror reloaded", "len", len(c.mirror))
		c.view.Refresh(c.Tasks())

	case OpDelete:
		idx := c.indexOf(r.Op.Task.ID, r.Op.Pos)
		if idx < 0 {
			// A reload that ran after the delete already dropped it.
			return nil
		}
		c.mirror = append(c.mirror[:idx], c.mirror[idx+1:]...)
		c.log.Debug("row removed", "id", r.Op.Task.ID, "pos", idx)
		c.view.RowRemoved(idx)

	case OpToggle:
		idx := c.indexOf(r.Op.Task.ID, r.Op.Pos)
		if idx < 0 {
			return nil
		}
		c.mirror[idx] = r.Op.Task
		c.log.Debug("row changed", "id", r.Op.Task.ID, "pos", idx, "completed", r.Op.Task.Completed)
		c.view.RowChanged(idx, r.Op.Task)
	}
	return nil
}
