package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// storeJob performs blocking store I/O and returns the message to deliver back
// to the update loop.
type storeJob func(ctx context.Context) tea.Msg

// workerMsg wraps a finished job's message so the update loop knows to re-arm
// the listener.
type workerMsg struct{ msg tea.Msg }

// storeWorker runs store jobs one at a time, in submission order, off the
// update loop. Results come back on a single channel in the same order, so
// gestures apply in the order their store calls ran and the store never sees
// concurrent callers.
type storeWorker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []storeJob
	closed bool

	out chan tea.Msg
}

func newStoreWorker() *storeWorker {
	w := &storeWorker{out: make(chan tea.Msg)}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// submit enqueues job. It never blocks, so it is safe to call from Update.
func (w *storeWorker) submit(job storeJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.queue = append(w.queue, job)
	w.cond.Signal()
}

func (w *storeWorker) next() (storeJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queue) == 0 && !w.closed {
		w.cond.Wait()
	}
	if len(w.queue) == 0 {
		return nil, false
	}
	job := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	return job, true
}

func (w *storeWorker) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// run executes jobs until close. Jobs already queued at close still run; a
// store call that was issued is never abandoned.
func (w *storeWorker) run(ctx context.Context) {
	defer close(w.out)
	for {
		job, ok := w.next()
		if !ok {
			return
		}
		msg := job(context.WithoutCancel(ctx))
		if msg == nil {
			continue
		}
		select {
		case w.out <- msg:
		case <-ctx.Done():
			// Nobody is listening any more; keep draining so queued writes finish.
		}
	}
}

func (w *storeWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.cond.Broadcast()
}

// drain runs every queued job inline and returns their messages. It is for
// tests that want deterministic delivery without the goroutine.
func (w *storeWorker) drain(ctx context.Context) []tea.Msg {
	var out []tea.Msg
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return out
		}
		job := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()
		if msg := job(ctx); msg != nil {
			out = append(out, msg)
		}
	}
}

func listenWorker(out <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-out
		if !ok {
			return nil
		}
		return workerMsg{msg: msg}
	}
}
