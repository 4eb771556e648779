package tasklist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tasklist-cli/internal/model"
	"tasklist-cli/internal/store"
)

// memStore is an in-memory Store with failure injection.
type memStore struct {
	nextID int64
	tasks  []model.Task

	failDelete error
	failUpdate error
	failGetAll error
}

func (s *memStore) insert(title string) model.Task {
	s.nextID++
	t := model.Task{ID: s.nextID, Title: title}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *memStore) Get(_ context.Context, id int64) (model.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("task %d: %w", id, store.ErrNotFound)
}

func (s *memStore) Update(_ context.Context, t model.Task) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return nil
		}
	}
	return fmt.Errorf("task %d: %w", t.ID, store.ErrNotFound)
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) GetAll(context.Context) ([]model.Task, error) {
	if s.failGetAll != nil {
		return nil, s.failGetAll
	}
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

type recordingView struct {
	refreshes int
	last      []model.Task
	removed   []int
	changed   []int
	errs      []error
}

func (v *recordingView) Refresh(ts []model.Task) {
	v.refreshes++
	v.last = ts
}
func (v *recordingView) RowRemoved(pos int)               { v.removed = append(v.removed, pos) }
func (v *recordingView) RowChanged(pos int, _ model.Task) { v.changed = append(v.changed, pos) }
func (v *recordingView) ShowError(err error)              { v.errs = append(v.errs, err) }

func mirrorTitles(c *Controller) []string {
	var out []string
	for _, t := range c.Tasks() {
		out = append(out, t.Title)
	}
	return out
}

func assertTitles(t *testing.T, c *Controller, want ...string) {
	t.Helper()
	got := mirrorTitles(c)
	if len(got) != len(want) {
		t.Fatalf("mirror: expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mirror: expected %v, got %v", want, got)
		}
	}
}

func assertMirrorIsReversedStore(t *testing.T, c *Controller, s *memStore) {
	t.Helper()
	all, _ := s.GetAll(context.Background())
	m := c.Tasks()
	if len(m) != len(all) {
		t.Fatalf("mirror has %d tasks, store has %d", len(m), len(all))
	}
	for i := range all {
		if m[len(m)-1-i] != all[i] {
			t.Fatalf("mirror[%d]=%+v, store[%d]=%+v", len(m)-1-i, m[len(m)-1-i], i, all[i])
		}
	}
}

func TestLoad_EmptyStoreGivesEmptyMirror(t *testing.T) {
	s := &memStore{}
	v := &recordingView{}
	c := New(s, v)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty mirror, got %v", mirrorTitles(c))
	}
	if v.refreshes != 1 || len(v.last) != 0 {
		t.Fatalf("expected one empty refresh, got %d %v", v.refreshes, v.last)
	}
	if len(v.errs) != 0 {
		t.Fatalf("unexpected errors: %v", v.errs)
	}
}

func TestLoad_MirrorIsNewestFirst(t *testing.T) {
	s := &memStore{}
	s.insert("Buy milk")
	s.insert("Walk dog")
	c := New(s, &recordingView{})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	assertTitles(t, c, "Walk dog", "Buy milk")
	assertMirrorIsReversedStore(t, c, s)
}

func TestSwipeDelete_RemovesFromStoreThenMirror(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	milk := s.insert("Buy milk")
	s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	if err := c.SwipeDelete(ctx, 1); err != nil {
		t.Fatalf("swipe delete: %v", err)
	}
	assertTitles(t, c, "Walk dog")
	for _, st := range s.tasks {
		if st.ID == milk.ID {
			t.Fatalf("store still holds %+v", st)
		}
	}
	if len(v.removed) != 1 || v.removed[0] != 1 {
		t.Fatalf("expected row removed at 1, got %v", v.removed)
	}
	assertMirrorIsReversedStore(t, c, s)
}

func TestSwipeDelete_LastRemainingRow(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("only")
	c := New(s, &recordingView{})
	_ = c.Load(ctx)

	if err := c.SwipeDelete(ctx, 0); err != nil {
		t.Fatalf("swipe delete: %v", err)
	}
	if c.Len() != 0 || len(s.tasks) != 0 {
		t.Fatalf("expected empty mirror and store, got %v / %v", mirrorTitles(c), s.tasks)
	}
}

func TestSwipeDelete_StorageFailureLeavesMirrorUnchanged(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("Buy milk")
	s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	s.failDelete = &store.StorageError{Op: "delete", Err: errors.New("disk full")}
	err := c.SwipeDelete(ctx, 1)
	if !errors.Is(err, store.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	assertTitles(t, c, "Walk dog", "Buy milk")
	if len(v.removed) != 0 {
		t.Fatalf("row must not be removed on failure: %v", v.removed)
	}
	if len(v.errs) != 1 || !errors.Is(v.errs[0], store.ErrStorageFailure) {
		t.Fatalf("expected surfaced storage failure, got %v", v.errs)
	}
}

func TestSwipeDelete_StalePositionIsNoop(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("a")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	for _, pos := range []int{-1, 1, 99} {
		if err := c.SwipeDelete(ctx, pos); err != nil {
			t.Fatalf("pos %d: expected no-op, got %v", pos, err)
		}
	}
	if len(s.tasks) != 1 || c.Len() != 1 || len(v.removed) != 0 {
		t.Fatalf("stale gestures mutated state: store=%v mirror=%v removed=%v", s.tasks, mirrorTitles(c), v.removed)
	}
}

func TestSwipeToggle_UpdatesStoreAndMirrorInPlace(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	dog := s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	if err := c.SwipeToggle(ctx, 0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.tasks[0].Completed || s.tasks[0].ID != dog.ID {
		t.Fatalf("store not updated: %+v", s.tasks)
	}
	got, _ := c.At(0)
	if !got.Completed {
		t.Fatalf("mirror not updated: %+v", got)
	}
	if len(v.changed) != 1 || v.changed[0] != 0 {
		t.Fatalf("expected row changed at 0, got %v", v.changed)
	}
	if v.refreshes != 1 {
		t.Fatalf("toggle must not trigger a full refresh, got %d", v.refreshes)
	}
}

func TestToggle_QueuedTwiceBeforeApplyCancelsOut(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	// Both gestures start from the same mirror state; both store calls finish
	// before either result is applied.
	first, _ := c.BeginToggle(0)
	second, _ := c.BeginToggle(0)
	r1 := first.Exec(ctx, s)
	r2 := second.Exec(ctx, s)
	if err := c.Apply(r1); err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if err := c.Apply(r2); err != nil {
		t.Fatalf("apply second: %v", err)
	}

	if s.tasks[0].Completed {
		t.Fatalf("two toggles should leave the stored task open: %+v", s.tasks[0])
	}
	got, _ := c.At(0)
	if got.Completed {
		t.Fatalf("two toggles should leave the mirror open: %+v", got)
	}
	if len(v.changed) != 2 {
		t.Fatalf("expected two row changes, got %v", v.changed)
	}
}

func TestSwipeToggle_NotFoundLeavesMirrorUntouched(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	// Someone else removed the row after our last reload.
	s.tasks = nil

	err := c.SwipeToggle(ctx, 0)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ := c.At(0)
	if got.Completed {
		t.Fatalf("mirror mutated on failure: %+v", got)
	}
	if len(v.changed) != 0 || len(v.errs) != 1 {
		t.Fatalf("expected one surfaced error and no change, got changed=%v errs=%v", v.changed, v.errs)
	}
}

func TestReload_FailureKeepsLastKnownGoodMirror(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("a")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	s.insert("b")
	s.failGetAll = &store.StorageError{Op: "get all", Err: errors.New("corrupt")}
	if err := c.Reload(ctx); !errors.Is(err, store.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	assertTitles(t, c, "a")
	if v.refreshes != 1 {
		t.Fatalf("failed reload must not refresh, got %d", v.refreshes)
	}
}

func TestEntryClosed_ReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("Walk dog")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	// The entry form wrote straight to the store.
	s.insert("Pay rent")
	if err := c.EntryClosed(ctx); err != nil {
		t.Fatalf("entry closed: %v", err)
	}
	assertTitles(t, c, "Pay rent", "Walk dog")
	if v.refreshes != 2 {
		t.Fatalf("expected a full refresh, got %d", v.refreshes)
	}
}

func TestApply_DeleteAfterInterleavedReloadUsesID(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	a := s.insert("a")
	s.insert("b")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx) // [b, a]

	op, ok := c.BeginDelete(1) // a
	if !ok {
		t.Fatalf("expected in-bounds gesture")
	}
	// A newer task arrives and the mirror is reloaded before the delete lands.
	s.insert("c")
	_ = c.Reload(ctx) // [c, b, a]

	res := op.Exec(ctx, s)
	if err := c.Apply(res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	assertTitles(t, c, "c", "b")
	if len(v.removed) != 1 || v.removed[0] != 2 {
		t.Fatalf("expected row removed at its current position 2, got %v", v.removed)
	}
	for _, st := range s.tasks {
		if st.ID == a.ID {
			t.Fatalf("store still holds a")
		}
	}
}

func TestApply_DeleteAlreadyDroppedByReloadIsNoop(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("a")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx)

	op, _ := c.BeginDelete(0)
	res := op.Exec(ctx, s)
	_ = c.Reload(ctx) // already reflects the delete

	if err := c.Apply(res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Len() != 0 || len(v.removed) != 0 {
		t.Fatalf("expected no second removal, mirror=%v removed=%v", mirrorTitles(c), v.removed)
	}
}

func TestExec_IgnoresCancellation(t *testing.T) {
	s := &memStore{}
	s.insert("a")
	c := New(s, &recordingView{})
	_ = c.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	toggle, _ := c.BeginToggle(0)
	if res := toggle.Exec(ctx, ctxCheckingStore{s}); res.Err != nil {
		t.Fatalf("issued toggle must run to completion, got %v", res.Err)
	}
	op, _ := c.BeginDelete(0)
	if res := op.Exec(ctx, ctxCheckingStore{s}); res.Err != nil {
		t.Fatalf("issued store call must run to completion, got %v", res.Err)
	}
}

type ctxCheckingStore struct{ *memStore }

func (s ctxCheckingStore) Get(ctx context.Context, id int64) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	return s.memStore.Get(ctx, id)
}

func (s ctxCheckingStore) Update(ctx context.Context, t model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.memStore.Update(ctx, t)
}

func (s ctxCheckingStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.memStore.Delete(ctx, id)
}

func TestMove_IsViewOnlyAndUndoneByReload(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	s.insert("a")
	s.insert("b")
	s.insert("c")
	v := &recordingView{}
	c := New(s, v)
	_ = c.Load(ctx) // [c, b, a]

	if !c.Move(0, 2) {
		t.Fatalf("expected move to succeed")
	}
	assertTitles(t, c, "b", "a", "c")
	if !c.Move(2, 0) {
		t.Fatalf("expected move back to succeed")
	}
	assertTitles(t, c, "c", "b", "a")
	if c.Move(0, 3) || c.Move(1, 1) {
		t.Fatalf("out-of-range or identity moves must be rejected")
	}

	_ = c.Move(0, 1)
	if got := []string{s.tasks[0].Title, s.tasks[1].Title, s.tasks[2].Title}; got[0] != "a" || got[2] != "c" {
		t.Fatalf("move must not touch the store: %v", got)
	}
	_ = c.Reload(ctx)
	assertTitles(t, c, "c", "b", "a")
}

func TestScenario_EndToEndMirrorMatchesStore(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	v := &recordingView{}
	c := New(s, v)

	_ = c.Load(ctx)
	s.insert("one")
	s.insert("two")
	s.insert("three")
	_ = c.EntryClosed(ctx)
	assertMirrorIsReversedStore(t, c, s)

	_ = c.SwipeToggle(ctx, 1)
	assertMirrorIsReversedStore(t, c, s)
	_ = c.SwipeDelete(ctx, 0)
	assertMirrorIsReversedStore(t, c, s)
	_ = c.Reload(ctx)
	assertMirrorIsReversedStore(t, c, s)
	assertTitles(t, c, "two", "one")
}
