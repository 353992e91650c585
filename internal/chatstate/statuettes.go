package chatstate

import (
	"slices"
	"sync"
)

// Statuettes is the FIFO of planted trap message ids. Each id is handed out
// by Poll at most once.
type Statuettes struct {
	mu  sync.Mutex
	ids []int64
}

func NewStatuettes() *Statuettes {
	return &Statuettes{}
}

func (s *Statuettes) Offer(messageID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, messageID)
}

// Poll removes and returns the oldest trap id.
func (s *Statuettes) Poll() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return 0, false
	}
	id := s.ids[0]
	s.ids = slices.Delete(s.ids, 0, 1)
	return id, true
}

func (s *Statuettes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
