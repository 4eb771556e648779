package store

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	dbFileName = "tasks.sqlite"

	envDataDir = "TASKLIST_DATA_DIR"
)

// Store is the durable task record store. It is the single source of truth for
// the task list.
//
// A Store is safe for sequential reuse. It is not designed for concurrent
// callers; the TUI funnels every call through one worker goroutine.
type Store struct {
	Dir string

	db  *sql.DB
	log *slog.Logger
}

type Option func(*Store)

// WithLogger sets the logger used for mutation and failure records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens (creating if needed) the task database under dir.
func Open(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, storageErr("open", errors.New("missing data dir"))
	}
	s := &Store{
		Dir: filepath.Clean(dir),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	db, err := openSQLite(ctx, s.Path())
	if err != nil {
		return nil, storageErr("open", err)
	}
	s.db = db
	s.log.Debug("store opened", "path", s.Path())
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return storageErr("close", err)
}

// DefaultDir returns the application's private data dir.
//
// Priority:
// 1) TASKLIST_DATA_DIR
// 2) <user config dir>/tasklist/data
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envDataDir)); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tasklist", "data"), nil
}

// DataVersion returns SQLite's data_version for the store's connection. The
// value changes only when another connection commits, never for this store's
// own writes.
func (s *Store) DataVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storageErr("data version", errors.New("store closed"))
	}
	var v int64
	if err := s.db.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, storageErr("data version", err)
	}
	return v, nil
}
