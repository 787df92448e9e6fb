// Package eventloop provides the main control flow: a single goroutine that owns
// all panel and scheduler state and runs posted work one item at a time.
package eventloop

import (
	"context"
	"sync"
)

// Dispatcher accepts work for the main control flow.
// Post returns false when the work was dropped because the loop is gone.
type Dispatcher interface {
	Post(fn func()) bool
}

// Loop runs posted functions sequentially on the goroutine that called Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

var _ Dispatcher = (*Loop)(nil)

// New creates a Loop with the given queue capacity.
func New(buffer int) *Loop {
	if buffer < 0 {
		buffer = 0
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and gives up once the loop stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
// It returns false if the loop stopped before fn ran.
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.done:
		// fn may still have completed right before shutdown.
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Run processes work until ctx is cancelled. Work still queued at that point is dropped.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) stop() {
	l.once.Do(func() { close(l.done) })
}
