package entry

import (
	"context"
	"errors"
	"testing"

	"tasklist-cli/internal/model"
	"tasklist-cli/internal/store"
)

type fakeInserter struct {
	calls []string
	err   error
}

func (f *fakeInserter) Insert(_ context.Context, title string) (model.Task, error) {
	f.calls = append(f.calls, title)
	if f.err != nil {
		return model.Task{}, f.err
	}
	return model.Task{ID: int64(len(f.calls)), Title: title}, nil
}

func TestSubmit_NotifiesAfterInsert(t *testing.T) {
	ins := &fakeInserter{}
	closed := 0
	f := NewForm(ins, func() {
		if len(ins.calls) != 1 {
			t.Fatalf("closed fired before insert")
		}
		closed++
	}, nil)

	if err := f.Submit(context.Background(), "  Pay rent "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected one notification, got %d", closed)
	}
	if ins.calls[0] != "Pay rent" {
		t.Fatalf("expected trimmed title, got %q", ins.calls[0])
	}
}

func TestSubmit_InvalidInputNeverReachesStore(t *testing.T) {
	ins := &fakeInserter{}
	closed := 0
	f := NewForm(ins, func() { closed++ }, nil)

	err := f.Submit(context.Background(), "   ")
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(ins.calls) != 0 || closed != 0 {
		t.Fatalf("invalid input leaked: calls=%v closed=%d", ins.calls, closed)
	}
}

func TestSubmit_InsertFailureDoesNotNotify(t *testing.T) {
	ins := &fakeInserter{err: &store.StorageError{Op: "insert", Err: errors.New("disk full")}}
	closed := 0
	f := NewForm(ins, func() { closed++ }, nil)

	if err := f.Submit(context.Background(), "x"); !errors.Is(err, store.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if closed != 0 {
		t.Fatalf("failed insert must not notify")
	}
}

func TestCancel_DoesNotNotify(t *testing.T) {
	closed := 0
	f := NewForm(&fakeInserter{}, func() { closed++ }, nil)
	f.Cancel()
	if closed != 0 {
		t.Fatalf("cancel must not notify")
	}
}

func TestSignal_CoalescesAndNeverBlocks(t *testing.T) {
	s := NewSignal()
	s.Notify()
	s.Notify()
	s.Notify()

	select {
	case <-s.C():
	default:
		t.Fatalf("expected a pending notification")
	}
	select {
	case <-s.C():
		t.Fatalf("expected notifications to coalesce")
	default:
	}
}
