// Package chatstate holds the per-chat state the duel engine reads and
// mutates: restrictions, temporary messages, the recent message window and
// the statuette queue.
//
// Mutations of restrictions and temporary messages go through a Lane, a
// single ordered worker owned by the chat, so concurrent updates for the
// same chat never interleave.
package chatstate

import "sync"

// Lane runs submitted functions one at a time in submission order on a
// dedicated goroutine. The queue is unbounded.
type Lane struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewLane starts the worker goroutine. Callers must Close the lane.
func NewLane() *Lane {
	l := &Lane{done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Lane) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Submit enqueues fn without waiting for it. It reports false when the lane
// is closed and fn was dropped.
func (l *Lane) Submit(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// Do enqueues fn and blocks until it has run. It reports false when fn was
// dropped because the lane closed first.
func (l *Lane) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Submit(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Close stops the worker and discards queued work. A function already
// running completes before Close returns.
func (l *Lane) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		l.queue = nil
		l.cond.Broadcast()
	}
	l.mu.Unlock()
	<-l.done
}
