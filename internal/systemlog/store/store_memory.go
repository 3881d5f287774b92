package store

import (
	"context"
	"sort"
	"sync"

	"coinquest/internal/systemlog/models"
)

// InMemoryStore keeps system log entries in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*models.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

// List returns entries newest first.
func (s *InMemoryStore) List(_ context.Context, skip, limit int) ([]*models.Entry, error) {
	s.mu.RLock()
	sorted := make([]*models.Entry, len(s.entries))
	copy(sorted, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	out := make([]*models.Entry, 0)
	if skip >= len(sorted) {
		return out, nil
	}
	end := min(skip+limit, len(sorted))
	for _, e := range sorted[skip:end] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}
