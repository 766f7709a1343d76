package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// MarginStore is an in-memory implementation of storage.MarginStore.
type MarginStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarginSummary // keyed by book_key
}

// NewMarginStore creates a new in-memory margin store.
func NewMarginStore() *MarginStore {
	return &MarginStore{
		data: make(map[string]*domain.MarginSummary),
	}
}

// Rebuild replaces all stored summaries in one step.
func (s *MarginStore) Rebuild(_ context.Context, summaries []*domain.MarginSummary) error {
	next := make(map[string]*domain.MarginSummary, len(summaries))
	for _, m := range summaries {
		if m == nil || m.BookKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[m.BookKey]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *m
		next[m.BookKey] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all summaries ordered by book key.
func (s *MarginStore) List(_ context.Context) ([]*domain.MarginSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarginSummary, 0, len(s.data))
	for _, m := range s.data {
		copy := *m
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BookKey < result[j].BookKey
	})

	return result, nil
}

var _ storage.MarginStore = (*MarginStore)(nil)
