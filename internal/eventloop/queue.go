package eventloop

import "sync"

// Queue is a Dispatcher that only runs work when the owner drains it.
// It stands in for the Loop where a test needs to control when posted work runs.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
}

var _ Dispatcher = (*Queue)(nil)

func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, fn)
	return true
}

// Len returns the number of queued functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RunOne runs the oldest queued function and reports whether there was one.
func (q *Queue) RunOne() bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	fn := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()

	fn()
	return true
}

// Drain runs queued functions, including ones they post, until the queue is empty.
// It returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for q.RunOne() {
		n++
	}
	return n
}

// Close makes further Post calls fail.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
}
