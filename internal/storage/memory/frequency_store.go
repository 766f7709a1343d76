package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// FrequencyStore is an in-memory implementation of storage.FrequencyStore.
type FrequencyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BestPriceFrequency // keyed by book_key
}

// NewFrequencyStore creates a new in-memory frequency store.
func NewFrequencyStore() *FrequencyStore {
	return &FrequencyStore{
		data: make(map[string]*domain.BestPriceFrequency),
	}
}

// Rebuild replaces all stored rows in one step.
func (s *FrequencyStore) Rebuild(_ context.Context, freqs []*domain.BestPriceFrequency) error {
	next := make(map[string]*domain.BestPriceFrequency, len(freqs))
	for _, f := range freqs {
		if f == nil || f.BookKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[f.BookKey]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *f
		next[f.BookKey] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all rows ordered by book key.
func (s *FrequencyStore) List(_ context.Context) ([]*domain.BestPriceFrequency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BestPriceFrequency, 0, len(s.data))
	for _, f := range s.data {
		copy := *f
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BookKey < result[j].BookKey
	})

	return result, nil
}

var _ storage.FrequencyStore = (*FrequencyStore)(nil)
