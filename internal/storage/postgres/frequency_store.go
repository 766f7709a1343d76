package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// FrequencyStore implements storage.FrequencyStore using PostgreSQL.
type FrequencyStore struct {
	pool *Pool
}

// NewFrequencyStore creates a new PostgreSQL frequency store.
func NewFrequencyStore(pool *Pool) *FrequencyStore {
	return &FrequencyStore{pool: pool}
}

// Compile-time check
var _ storage.FrequencyStore = (*FrequencyStore)(nil)

// Rebuild replaces the full best price share table in a single transaction.
func (s *FrequencyStore) Rebuild(ctx context.Context, freqs []*domain.BestPriceFrequency) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM best_price_shares`); err != nil {
		return fmt.Errorf("clear best price shares: %w", err)
	}

	query := `
		INSERT INTO best_price_shares (
			book_key, best_home_count, best_away_count, best_total_count, best_share
		) VALUES ($1, $2, $3, $4, $5)
	`

	for _, f := range freqs {
		_, err := tx.Exec(ctx, query,
			f.BookKey,
			f.HomeCount,
			f.AwayCount,
			f.TotalCount,
			f.Share,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert best price share %s: %w", f.BookKey, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert best price share: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all best price shares ordered by book key.
func (s *FrequencyStore) List(ctx context.Context) ([]*domain.BestPriceFrequency, error) {
	query := `
		SELECT book_key, best_home_count, best_away_count, best_total_count, best_share
		FROM best_price_shares
		ORDER BY book_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query best price shares: %w", err)
	}
	defer rows.Close()

	return scanBestPriceFrequencies(rows)
}

// scanBestPriceFrequencies scans rows into frequency structs.
func scanBestPriceFrequencies(rows pgx.Rows) ([]*domain.BestPriceFrequency, error) {
	var freqs []*domain.BestPriceFrequency

	for rows.Next() {
		f := &domain.BestPriceFrequency{}
		err := rows.Scan(
			&f.BookKey,
			&f.HomeCount,
			&f.AwayCount,
			&f.TotalCount,
			&f.Share,
		)
		if err != nil {
			return nil, fmt.Errorf("scan best price share: %w", err)
		}
		freqs = append(freqs, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate best price shares: %w", err)
	}

	return freqs, nil
}
