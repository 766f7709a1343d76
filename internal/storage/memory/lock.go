package memory

import (
	"context"
	"sync"

	"moneyline-lab/internal/storage"
)

// PipelineLock is an in-process implementation of storage.PipelineLock.
type PipelineLock struct {
	mu sync.Mutex
}

// NewPipelineLock creates a new in-process pipeline lock.
func NewPipelineLock() *PipelineLock {
	return &PipelineLock{}
}

// Acquire attempts to take the lock without blocking. Returns
// storage.ErrPipelineBusy if another holder has it.
func (l *PipelineLock) Acquire(_ context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, storage.ErrPipelineBusy
	}

	return l.mu.Unlock, nil
}

var _ storage.PipelineLock = (*PipelineLock)(nil)
