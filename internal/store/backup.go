package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backup writes a consistent snapshot of the database to dest.
// It refuses to overwrite an existing file.
func (s *Store) Backup(ctx context.Context, dest string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", errInvalid("missing backup destination")
	}
	if s.db == nil {
		return "", storageErr("backup", errors.New("store closed"))
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", storageErr("backup", err)
	}
	if _, err := os.Stat(abs); err == nil {
		return "", errInvalid("backup destination exists: %s", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", storageErr("backup", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, abs); err != nil {
		return "", storageErr("backup", fmt.Errorf("vacuum into %s: %w", abs, err))
	}
	s.log.Info("backup written", "path", abs)
	return abs, nil
}
