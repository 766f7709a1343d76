package memory

import (
	"context"
	"sort"
	"sync"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// CalibrationStore is an in-memory implementation of storage.CalibrationStore.
type CalibrationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CalibrationBucket // keyed by label
}

// NewCalibrationStore creates a new in-memory calibration store.
func NewCalibrationStore() *CalibrationStore {
	return &CalibrationStore{
		data: make(map[string]*domain.CalibrationBucket),
	}
}

// Rebuild replaces all stored buckets in one step.
func (s *CalibrationStore) Rebuild(_ context.Context, buckets []*domain.CalibrationBucket) error {
	next := make(map[string]*domain.CalibrationBucket, len(buckets))
	for _, b := range buckets {
		if b == nil || b.Label == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[b.Label]; exists {
			return storage.ErrDuplicateKey
		}

		copy := *b
		next[b.Label] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next

	return nil
}

// List retrieves all buckets ordered by lower bound.
func (s *CalibrationStore) List(_ context.Context) ([]*domain.CalibrationBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CalibrationBucket, 0, len(s.data))
	for _, b := range s.data {
		copy := *b
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Low < result[j].Low
	})

	return result, nil
}

var _ storage.CalibrationStore = (*CalibrationStore)(nil)
