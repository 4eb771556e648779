package entry

// Signal carries "entry flow closed" notifications across goroutines. The
// form side calls Notify; the list side receives on C.
//
// Pending notifications coalesce: one reload covers any number of creations
// since the last one was consumed.
type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify never blocks.
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *Signal) C() <-chan struct{} { return s.ch }
