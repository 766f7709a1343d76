package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ResultRecord // keyed by scoreboard_date|result_event_id
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]*domain.ResultRecord),
	}
}

// resultKey generates a unique key for a result record.
func resultKey(scoreboardDate, resultEventID string) string {
	return fmt.Sprintf("%s|%s", scoreboardDate, resultEventID)
}

// Upsert writes records, overwriting any existing (scoreboard date, event id)
// rows. Returns the number of records written.
func (s *ResultStore) Upsert(_ context.Context, records []*domain.ResultRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.ResultEventID == "" {
			return 0, storage.ErrInvalidInput
		}

		copy := *r
		s.data[resultKey(r.ScoreboardDate, r.ResultEventID)] = &copy
	}

	return len(records), nil
}

// List retrieves all records ordered by scoreboard date and event id.
func (s *ResultStore) List(_ context.Context) ([]*domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ResultRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ScoreboardDate != result[j].ScoreboardDate {
			return result[i].ScoreboardDate < result[j].ScoreboardDate
		}
		return result[i].ResultEventID < result[j].ResultEventID
	})

	return result, nil
}

// ListLatest returns one record per result event id, keeping the record from
// the most recent pull (latest PulledAt, then latest ScoreboardDate), ordered
// by result event id.
func (s *ResultStore) ListLatest(_ context.Context) ([]*domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.ResultRecord)
	for _, r := range s.data {
		cur, ok := latest[r.ResultEventID]
		if !ok || newerPull(r, cur) {
			latest[r.ResultEventID] = r
		}
	}

	result := make([]*domain.ResultRecord, 0, len(latest))
	for _, r := range latest {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ResultEventID < result[j].ResultEventID
	})

	return result, nil
}

// newerPull reports whether a should replace b as the canonical record.
func newerPull(a, b *domain.ResultRecord) bool {
	if !a.PulledAt.Equal(b.PulledAt) {
		return a.PulledAt.After(b.PulledAt)
	}
	return a.ScoreboardDate > b.ScoreboardDate
}

// Count returns the number of stored records.
func (s *ResultStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

var _ storage.ResultStore = (*ResultStore)(nil)
