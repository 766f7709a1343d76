package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// KPIStore is an in-memory implementation of storage.KPIStore.
type KPIStore struct {
	mu   sync.RWMutex
	data map[string]*domain.KPIEntry // keyed by name
}

// NewKPIStore creates a new in-memory KPI store.
func NewKPIStore() *KPIStore {
	return &KPIStore{
		data: make(map[string]*domain.KPIEntry),
	}
}

// Rebuild replaces all stored entries in one step.
func (s *KPIStore) Rebuild(_ context.Context, entries []*domain.KPIEntry) error {
	next := make(map[string]*domain.KPIEntry, len(entries))
	for _, e := range entries {
		if e == nil || e.Name == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[e.Name]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *e
		next[e.Name] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all entries ordered by name.
func (s *KPIStore) List(_ context.Context) ([]*domain.KPIEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.KPIEntry, 0, len(s.data))
	for _, e := range s.data {
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

var _ storage.KPIStore = (*KPIStore)(nil)
