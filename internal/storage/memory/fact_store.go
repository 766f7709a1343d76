package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// FactStore is an in-memory implementation of storage.FactStore.
type FactStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GameResultFact // keyed by event_id
}

// NewFactStore creates a new in-memory fact store.
func NewFactStore() *FactStore {
	return &FactStore{
		data: make(map[string]*domain.GameResultFact),
	}
}

// Rebuild replaces all stored rows with facts in one step.
func (s *FactStore) Rebuild(_ context.Context, facts []*domain.GameResultFact) error {
	next := make(map[string]*domain.GameResultFact, len(facts))
	for _, f := range facts {
		if f == nil || f.EventID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[f.EventID]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *f
		next[f.EventID] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all facts ordered by event id.
func (s *FactStore) List(_ context.Context) ([]*domain.GameResultFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.GameResultFact, 0, len(s.data))
	for _, f := range s.data {
		copy := *f
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EventID < result[j].EventID
	})

	return result, nil
}

// GetByEventID retrieves one fact. Returns ErrNotFound if absent.
func (s *FactStore) GetByEventID(_ context.Context, eventID string) (*domain.GameResultFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.data[eventID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *f
	return &copy, nil
}

var _ storage.FactStore = (*FactStore)(nil)
