package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// MappingStore is an in-memory implementation of storage.MappingStore.
type MappingStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EntityMapping // keyed by event_id
}

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{
		data: make(map[string]*domain.EntityMapping),
	}
}

// Upsert writes mappings, overwriting any existing event ids. Returns the
// number of mappings written.
func (s *MappingStore) Upsert(_ context.Context, mappings []*domain.EntityMapping) (int, error) {
	if len(mappings) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range mappings {
		if m == nil || m.EventID == "" {
			return 0, storage.ErrInvalidInput
		}

		copy := *m
		s.data[m.EventID] = &copy
	}

	return len(mappings), nil
}

// List retrieves all mappings ordered by event id.
func (s *MappingStore) List(_ context.Context) ([]*domain.EntityMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.EntityMapping, 0, len(s.data))
	for _, m := range s.data {
		copy := *m
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EventID < result[j].EventID
	})

	return result, nil
}

var _ storage.MappingStore = (*MappingStore)(nil)
