package chatstate

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(epoch int64) *fakeClock {
	return &fakeClock{t: time.Unix(epoch, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(epoch int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.Unix(epoch, 0)
}

type fakeRestrictor struct {
	mu    sync.Mutex
	calls []restrictCall
	err   error
}

type restrictCall struct {
	userID int64
	until  int64
}

func (f *fakeRestrictor) Restrict(_ context.Context, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, restrictCall{userID: userID, until: until.Unix()})
	return f.err
}

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []int64
	fail    map[int64]bool
}

func (f *fakeDeleter) Delete(_ context.Context, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	if f.fail[messageID] {
		return errors.New("message to delete not found")
	}
	return nil
}

// seqRand replays vals, each reduced modulo n.
type seqRand struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}
