package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tasklist-cli/internal/model"

	"github.com/google/uuid"
)

func appendEvent(ctx context.Context, tx *sql.Tx, typ string, taskID int64, payload any, at time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO task_events(event_id, type, task_id, payload_json, issued_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		uuid.NewString(), typ, taskID, string(raw), at.UnixMilli())
	return err
}

// ReadEvents returns logged mutations oldest first.
//
// limit <= 0 means "all"; otherwise the most recent limit events are returned.
func (s *Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if s.db == nil {
		return nil, storageErr("read events", errors.New("store closed"))
	}
	q := `SELECT event_id, type, task_id, payload_json, issued_at_unixms FROM task_events ORDER BY seq DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, storageErr("read events", err)
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev          model.Event
			payloadJSON string
			issuedAtMs  int64
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.TaskID, &payloadJSON, &issuedAtMs); err != nil {
			return nil, storageErr("read events", err)
		}
		var payload any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, storageErr("read events", fmt.Errorf("event %s payload: %w", ev.ID, err))
		}
		ev.Payload = payload
		ev.TS = time.UnixMilli(issuedAtMs).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read events", err)
	}

	// Query is newest first so LIMIT keeps the tail; flip back to log order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
