package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// BestQuoteStore is an in-memory implementation of storage.BestQuoteStore.
type BestQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BestMarketQuote // keyed by event_id
}

// NewBestQuoteStore creates a new in-memory best quote store.
func NewBestQuoteStore() *BestQuoteStore {
	return &BestQuoteStore{
		data: make(map[string]*domain.BestMarketQuote),
	}
}

// Rebuild replaces all stored rows with quotes in one step.
func (s *BestQuoteStore) Rebuild(_ context.Context, quotes []*domain.BestMarketQuote) error {
	next := make(map[string]*domain.BestMarketQuote, len(quotes))
	for _, q := range quotes {
		if q == nil || q.EventID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[q.EventID]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *q
		next[q.EventID] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all best quotes ordered by event id.
func (s *BestQuoteStore) List(_ context.Context) ([]*domain.BestMarketQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BestMarketQuote, 0, len(s.data))
	for _, q := range s.data {
		copy := *q
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EventID < result[j].EventID
	})

	return result, nil
}

// Count returns the number of stored best quote rows.
func (s *BestQuoteStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

var _ storage.BestQuoteStore = (*BestQuoteStore)(nil)
