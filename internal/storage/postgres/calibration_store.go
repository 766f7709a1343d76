package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// CalibrationStore implements storage.CalibrationStore using PostgreSQL.
type CalibrationStore struct {
	pool *Pool
}

// NewCalibrationStore creates a new PostgreSQL calibration store.
func NewCalibrationStore(pool *Pool) *CalibrationStore {
	return &CalibrationStore{pool: pool}
}

// Compile-time check
var _ storage.CalibrationStore = (*CalibrationStore)(nil)

// Rebuild replaces the full calibration bucket table in a single transaction.
func (s *CalibrationStore) Rebuild(ctx context.Context, buckets []*domain.CalibrationBucket) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM calibration_buckets`); err != nil {
		return fmt.Errorf("clear calibration buckets: %w", err)
	}

	query := `
		INSERT INTO calibration_buckets (
			bucket_label, bucket_low, bucket_high, n_games,
			favorite_win_rate, avg_implied_prob, diff_actual_minus_implied
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, b := range buckets {
		_, err := tx.Exec(ctx, query,
			b.Label,
			b.Low,
			b.High,
			b.Games,
			b.FavoriteWinRate,
			b.AvgImplied,
			b.Diff,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert calibration bucket %s: %w", b.Label, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert calibration bucket: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all calibration buckets ordered by lower bound.
func (s *CalibrationStore) List(ctx context.Context) ([]*domain.CalibrationBucket, error) {
	query := `
		SELECT bucket_label, bucket_low, bucket_high, n_games,
		       favorite_win_rate, avg_implied_prob, diff_actual_minus_implied
		FROM calibration_buckets
		ORDER BY bucket_low ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query calibration buckets: %w", err)
	}
	defer rows.Close()

	return scanCalibrationBuckets(rows)
}

// scanCalibrationBuckets scans rows into calibration bucket structs.
func scanCalibrationBuckets(rows pgx.Rows) ([]*domain.CalibrationBucket, error) {
	var buckets []*domain.CalibrationBucket

	for rows.Next() {
		b := &domain.CalibrationBucket{}
		err := rows.Scan(
			&b.Label,
			&b.Low,
			&b.High,
			&b.Games,
			&b.FavoriteWinRate,
			&b.AvgImplied,
			&b.Diff,
		)
		if err != nil {
			return nil, fmt.Errorf("scan calibration bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calibration buckets: %w", err)
	}

	return buckets, nil
}
