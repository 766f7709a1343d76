package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// ClosingQuoteStore is an in-memory implementation of storage.ClosingQuoteStore.
type ClosingQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ClosingQuote // keyed by event_id|book_key
}

// NewClosingQuoteStore creates a new in-memory closing quote store.
func NewClosingQuoteStore() *ClosingQuoteStore {
	return &ClosingQuoteStore{
		data: make(map[string]*domain.ClosingQuote),
	}
}

// Rebuild replaces all stored rows with quotes in one step.
func (s *ClosingQuoteStore) Rebuild(_ context.Context, quotes []*domain.ClosingQuote) error {
	next := make(map[string]*domain.ClosingQuote, len(quotes))
	for _, q := range quotes {
		if q == nil || q.EventID == "" {
			return storage.ErrInvalidInput
		}

		key := fmt.Sprintf("%s|%s", q.EventID, q.BookKey)
		if _, exists := next[key]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *q
		next[key] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all closing quotes ordered by event id and book key.
func (s *ClosingQuoteStore) List(_ context.Context) ([]*domain.ClosingQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ClosingQuote, 0, len(s.data))
	for _, q := range s.data {
		copy := *q
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EventID != result[j].EventID {
			return result[i].EventID < result[j].EventID
		}
		return result[i].BookKey < result[j].BookKey
	})

	return result, nil
}

var _ storage.ClosingQuoteStore = (*ClosingQuoteStore)(nil)
