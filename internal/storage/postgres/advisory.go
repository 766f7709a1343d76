package postgres

import (
	"context"
	"fmt"

	"moneyline-lab/internal/storage"
)

// pipelineLockKey is the advisory lock key every rebuild against the same
// database contends on. The value is arbitrary but must never change.
const pipelineLockKey = int64(7253043)

// PipelineLock implements storage.PipelineLock using a Postgres advisory lock.
// The lock is session-scoped, so a crashed holder releases it when its
// connection dies.
type PipelineLock struct {
	pool *Pool
}

// NewPipelineLock creates a new advisory-lock based pipeline lock.
func NewPipelineLock(pool *Pool) *PipelineLock {
	return &PipelineLock{pool: pool}
}

// Compile-time check
var _ storage.PipelineLock = (*PipelineLock)(nil)

// Acquire attempts to take the pipeline lock without blocking. It pins a
// dedicated connection for the lock's lifetime; the returned release function
// unlocks and returns the connection to the pool. Returns
// storage.ErrPipelineBusy if another holder has the lock.
func (l *PipelineLock) Acquire(ctx context.Context) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, pipelineLockKey).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, storage.ErrPipelineBusy
	}

	release := func() {
		// Unlock must run even when the caller's context is already done.
		// If it fails anyway, closing the session releases the lock too.
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, pipelineLockKey); err != nil {
			conn.Conn().Close(context.Background())
		}
		conn.Release()
	}

	return release, nil
}
