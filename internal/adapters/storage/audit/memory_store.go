package audit

import (
	"context"
	"sort"
	"sync"

	domain "academy/internal/domain/audit"
)

// MemoryStore keeps audit events in process.
type MemoryStore struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, event domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context, filter Filter, limit int) ([]domain.Event, error) {
	m.mu.Lock()
	var out []domain.Event
	for _, e := range m.events {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
