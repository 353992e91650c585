package repository

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local activity registry used when no table is
// configured. Its contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	last map[int64]time.Time
}

func NewMemory() *Memory {
	return &Memory{last: make(map[int64]time.Time)}
}

func (m *Memory) Get(_ context.Context, userID int64) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.last[userID]
	return t, ok, nil
}

func (m *Memory) Set(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[userID] = at
	return nil
}

func (m *Memory) Remove(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.last, userID)
	return nil
}

func (m *Memory) Contains(_ context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.last[userID]
	return ok, nil
}
