package history

import (
	"context"
	"sync"
)

// Memory keeps the most recent records in process memory.
type Memory struct {
	mu      sync.RWMutex
	records []Record
	limit   int
}

// NewMemory creates a store holding at most limit records; older ones are
// evicted first.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 1
	}
	return &Memory{
		records: make([]Record, 0, limit),
		limit:   limit,
	}
}

func (m *Memory) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)
	if over := len(m.records) - m.limit; over > 0 {
		m.records = append(m.records[:0], m.records[over:]...)
	}
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]Record, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].ID == id {
			return m.records[i], nil
		}
	}
	return Record{}, ErrNotFound
}
