package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tasklist-cli/internal/entry"
	"tasklist-cli/internal/model"
	"tasklist-cli/internal/store"
	"tasklist-cli/internal/tasklist"

	"github.com/spf13/cobra"
)

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id %q", store.ErrInvalidInput, s)
	}
	return id, nil
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, app, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			ctrl := tasklist.New(sess.store, nil, tasklist.WithLogger(sess.log))
			if err := ctrl.Load(ctx); err != nil {
				return writeErr(cmd, err)
			}

			// The form only reports that the flow closed; learn what was
			// created by reloading, as the list does. Another process may
			// insert in between, so look only past the ids we already had.
			before := maxID(ctrl.Tasks())
			title := strings.Join(args, " ")
			var reloadErr error
			form := entry.NewForm(sess.store, func() { reloadErr = ctrl.EntryClosed(ctx) }, sess.log)
			if err := form.Submit(ctx, title); err != nil {
				return writeErr(cmd, err)
			}
			if reloadErr != nil {
				return writeErr(cmd, reloadErr)
			}
			title, _ = entry.Validate(title)
			t, ok := createdSince(ctrl.Tasks(), before, title)
			if !ok {
				return writeErr(cmd, errors.New("task was not found after insert"))
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func maxID(ts []model.Task) int64 {
	var top int64
	for _, t := range ts {
		if t.ID > top {
			top = t.ID
		}
	}
	return top
}

// createdSince picks the task an insert produced from a reload: the oldest
// task newer than after with the given title, else the oldest newer task.
func createdSince(ts []model.Task, after int64, title string) (model.Task, bool) {
	var (
		match, first model.Task
		hasMatch     bool
		hasFirst     bool
	)
	for _, t := range ts {
		if t.ID <= after {
			continue
		}
		if t.Title == title && (!hasMatch || t.ID < match.ID) {
			match, hasMatch = t, true
		}
		if !hasFirst || t.ID < first.ID {
			first, hasFirst = t, true
		}
	}
	if hasMatch {
		return match, true
	}
	return first, hasFirst
}

func newListCmd(app *App) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, app, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			var tasks []model.Task
			switch strings.ToLower(strings.TrimSpace(order)) {
			case "", "newest":
				ctrl := tasklist.New(sess.store, nil, tasklist.WithLogger(sess.log))
				if err := ctrl.Load(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				tasks = ctrl.Tasks()
			case "oldest":
				tasks, err = sess.store.GetAll(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
			default:
				return writeErr(cmd, fmt.Errorf("%w: --order must be newest or oldest, got %q", store.ErrInvalidInput, order))
			}
			return writeOut(cmd, app, map[string]any{"data": tasks})
		},
	}
	cmd.Flags().StringVar(&order, "order", "newest", "Sort order (newest|oldest)")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := openSession(cmd, app, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			t, err := sess.store.Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTask(cmd, app, args[0], func(t model.Task) model.Task {
				return t.Toggled()
			})
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Change a task's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := entry.Validate(strings.Join(args[1:], " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			return updateTask(cmd, app, args[0], func(t model.Task) model.Task {
				t.Title = title
				return t
			})
		},
	}
}

// updateTask reads the task, applies fn and writes it back.
func updateTask(cmd *cobra.Command, app *App, rawID string, fn func(model.Task) model.Task) error {
	id, err := parseTaskID(rawID)
	if err != nil {
		return writeErr(cmd, err)
	}
	sess, err := openSession(cmd, app, true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer sess.Close()

	ctx := cmd.Context()
	t, err := sess.store.Get(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := sess.store.Update(ctx, fn(t)); err != nil {
		return writeErr(cmd, err)
	}
	t, err = sess.store.Get(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": t})
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task (deleting a missing id is not an error)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := openSession(cmd, app, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if err := sess.store.Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}
