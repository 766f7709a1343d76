package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// EquityStore is an in-memory implementation of storage.EquityStore.
type EquityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StrategyEquityPoint // keyed by strategy|event_id
}

// NewEquityStore creates a new in-memory equity store.
func NewEquityStore() *EquityStore {
	return &EquityStore{
		data: make(map[string]*domain.StrategyEquityPoint),
	}
}

// Rebuild replaces all stored points in one step.
func (s *EquityStore) Rebuild(_ context.Context, points []*domain.StrategyEquityPoint) error {
	next := make(map[string]*domain.StrategyEquityPoint, len(points))
	for _, p := range points {
		if p == nil || p.EventID == "" {
			return storage.ErrInvalidInput
		}

		key := fmt.Sprintf("%s|%s", p.Strategy, p.EventID)
		if _, exists := next[key]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *p
		next[key] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all points ordered by strategy and game index.
func (s *EquityStore) List(_ context.Context) ([]*domain.StrategyEquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StrategyEquityPoint, 0, len(s.data))
	for _, p := range s.data {
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Strategy != result[j].Strategy {
			return result[i].Strategy < result[j].Strategy
		}
		return result[i].GameIndex < result[j].GameIndex
	})

	return result, nil
}

// ListByStrategy retrieves one strategy's curve ordered by game index.
func (s *EquityStore) ListByStrategy(_ context.Context, strategy domain.Strategy) ([]*domain.StrategyEquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StrategyEquityPoint
	for _, p := range s.data {
		if p.Strategy == strategy {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].GameIndex < result[j].GameIndex
	})

	return result, nil
}

var _ storage.EquityStore = (*EquityStore)(nil)
