package runner

// Serial is a single-goroutine dispatch loop. Functions run in
// submission order, one at a time, mirroring a UI thread's looper.
type Serial struct {
	queue chan func()
	done  chan struct{}
}

// NewSerial starts the dispatch loop. Close releases it.
func NewSerial() *Serial {
	s := &Serial{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-s.done:
			return
		}
	}
}

// Dispatch enqueues fn. It drops the function if the loop has been
// closed; a torn-down context has nothing left to update.
func (s *Serial) Dispatch(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.done:
	}
}

// Close stops the loop. Pending functions are discarded.
func (s *Serial) Close() {
	close(s.done)
}

// Sync runs dispatched functions inline. Intended for tests and for
// callers that manage their own scheduling.
type Sync struct{}

func (Sync) Dispatch(fn func()) { fn() }
