package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tasklist-cli/internal/model"
)

// Insert creates a task with a fresh id and completed=false. The row is
// committed before Insert returns.
func (s *Store) Insert(ctx context.Context, title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, errInvalid("empty title")
	}
	if s.db == nil {
		return model.Task{}, storageErr("insert", errors.New("store closed"))
	}

	now := time.Now().UTC()
	t := model.Task{
		Title:     title,
		CreatedAt: now.Truncate(time.Millisecond),
		UpdatedAt: now.Truncate(time.Millisecond),
	}
	err := s.inTx(ctx, "insert", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(title, completed, created_at_unixms, updated_at_unixms) VALUES(?, 0, ?, ?)`,
			t.Title, now.UnixMilli(), now.UnixMilli())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = id
		return appendEvent(ctx, tx, model.EventTaskCreate, t.ID, t, now)
	})
	if err != nil {
		s.log.Warn("insert failed", "err", err)
		return model.Task{}, err
	}
	s.log.Debug("task inserted", "id", t.ID)
	return t, nil
}

// Update overwrites every mutable field of the task with id t.ID.
func (s *Store) Update(ctx context.Context, t model.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return errInvalid("empty title")
	}
	if s.db == nil {
		return storageErr("update", errors.New("store closed"))
	}

	now := time.Now().UTC()
	err := s.inTx(ctx, "update", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tasks SET title = ?, completed = ?, updated_at_unixms = ? WHERE id = ?`,
			t.Title, boolToInt(t.Completed), now.UnixMilli(), t.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errNotFound("task", t.ID)
		}
		payload := map[string]any{"title": t.Title, "completed": t.Completed}
		return appendEvent(ctx, tx, model.EventTaskUpdate, t.ID, payload, now)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		s.log.Warn("update failed", "id", t.ID, "err", err)
		return err
	}
	s.log.Debug("task updated", "id", t.ID, "completed", t.Completed)
	return nil
}

// Delete removes the task with the given id. A missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return storageErr("delete", errors.New("store closed"))
	}
	now := time.Now().UTC()
	err := s.inTx(ctx, "delete", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return appendEvent(ctx, tx, model.EventTaskDelete, id, map[string]any{}, now)
	})
	if err != nil {
		s.log.Warn("delete failed", "id", id, "err", err)
		return err
	}
	s.log.Debug("task deleted", "id", id)
	return nil
}

// GetAll returns every task in ascending insertion order.
func (s *Store) GetAll(ctx context.Context) ([]model.Task, error) {
	if s.db == nil {
		return nil, storageErr("get all", errors.New("store closed"))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, completed, created_at_unixms, updated_at_unixms FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, storageErr("get all", err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr("get all", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all", err)
	}
	return out, nil
}

// Get returns a single task.
func (s *Store) Get(ctx context.Context, id int64) (model.Task, error) {
	if s.db == nil {
		return model.Task{}, storageErr("get", errors.New("store closed"))
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, completed, created_at_unixms, updated_at_unixms FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, errNotFound("task", id)
	}
	if err != nil {
		return model.Task{}, storageErr("get", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var (
		t                    model.Task
		completed            int
		createdMs, updatedMs int64
	)
	if err := r.Scan(&t.ID, &t.Title, &completed, &createdMs, &updatedMs); err != nil {
		return model.Task{}, err
	}
	t.Completed = completed != 0
	t.CreatedAt = time.UnixMilli(createdMs).UTC()
	t.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return t, nil
}

// inTx runs fn in one transaction. Errors other than ErrNotFound/ErrInvalidInput
// are reported as storage failures.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			return err
		}
		return storageErr(op, err)
	}
	return storageErr(op, tx.Commit())
}
