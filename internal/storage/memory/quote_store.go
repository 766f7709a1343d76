package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// PriceQuoteStore is an in-memory implementation of storage.PriceQuoteStore.
type PriceQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceQuote // keyed by composite key
}

// NewPriceQuoteStore creates a new in-memory price quote store.
func NewPriceQuoteStore() *PriceQuoteStore {
	return &PriceQuoteStore{
		data: make(map[string]*domain.PriceQuote),
	}
}

// quoteKey generates a unique key for a quote row.
func quoteKey(q *domain.PriceQuote) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		q.SnapshotAt.UTC().Format(time.RFC3339Nano), q.EventID, q.BookKey, q.MarketKey, q.OutcomeName)
}

// InsertBulk adds quotes, silently skipping rows whose identity already
// exists. Returns the number of rows actually inserted.
func (s *PriceQuoteStore) InsertBulk(_ context.Context, quotes []*domain.PriceQuote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, q := range quotes {
		if q == nil || q.EventID == "" {
			return 0, storage.ErrInvalidInput
		}

		key := quoteKey(q)
		if _, exists := s.data[key]; exists {
			continue
		}

		copy := *q
		s.data[key] = &copy
		inserted++
	}

	return inserted, nil
}

// List retrieves all quotes ordered by snapshot time, event, book and outcome.
func (s *PriceQuoteStore) List(_ context.Context) ([]*domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PriceQuote, 0, len(s.data))
	for _, q := range s.data {
		copy := *q
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SnapshotAt.Equal(result[j].SnapshotAt) {
			return result[i].SnapshotAt.Before(result[j].SnapshotAt)
		}
		if result[i].EventID != result[j].EventID {
			return result[i].EventID < result[j].EventID
		}
		if result[i].BookKey != result[j].BookKey {
			return result[i].BookKey < result[j].BookKey
		}
		return result[i].OutcomeName < result[j].OutcomeName
	})

	return result, nil
}

// Count returns the number of stored quote rows.
func (s *PriceQuoteStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)
