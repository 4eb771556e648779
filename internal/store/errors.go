package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a malformed payload (e.g. an empty title).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound reports that an update target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorageFailure matches every *StorageError.
	ErrStorageFailure = errors.New("storage failure")
)

// StorageError wraps an underlying database or filesystem failure.
// Callers decide whether to retry; the store never does.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

type notFoundError struct {
	kind string
	id   int64
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.kind, e.id)
}

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

func errNotFound(kind string, id int64) error {
	return notFoundError{kind: kind, id: id}
}

func errInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
