package chatstate

import (
	"sync"

	"glock/internal/domain"
)

// Window is a bounded ring buffer of recently seen messages. Once full, a
// push evicts the oldest entry.
type Window struct {
	mu    sync.Mutex
	rnd   Rand
	buf   []domain.MessageSnapshot
	start int
	size  int
}

// NewWindow returns an empty window holding at most capacity snapshots.
func NewWindow(capacity int, rnd Rand) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{rnd: rnd, buf: make([]domain.MessageSnapshot, capacity)}
}

func (w *Window) Push(s domain.MessageSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size == len(w.buf) {
		w.buf[w.start] = s
		w.start = (w.start + 1) % len(w.buf)
		return
	}
	w.buf[(w.start+w.size)%len(w.buf)] = s
	w.size++
}

// Sample returns a uniformly chosen snapshot, or false when empty.
func (w *Window) Sample() (domain.MessageSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size == 0 {
		return domain.MessageSnapshot{}, false
	}
	i := w.rnd.IntN(w.size)
	return w.buf[(w.start+i)%len(w.buf)], true
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Items returns the snapshots from oldest to newest.
func (w *Window) Items() []domain.MessageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.MessageSnapshot, w.size)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}
