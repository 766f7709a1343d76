package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// MarginStore implements storage.MarginStore using PostgreSQL.
type MarginStore struct {
	pool *Pool
}

// NewMarginStore creates a new PostgreSQL margin store.
func NewMarginStore(pool *Pool) *MarginStore {
	return &MarginStore{pool: pool}
}

// Compile-time check
var _ storage.MarginStore = (*MarginStore)(nil)

// Rebuild replaces the full margin summary table in a single transaction.
func (s *MarginStore) Rebuild(ctx context.Context, summaries []*domain.MarginSummary) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM margin_summaries`); err != nil {
		return fmt.Errorf("clear margin summaries: %w", err)
	}

	query := `
		INSERT INTO margin_summaries (
			book_key, n_games, avg_overround, median_overround, min_overround, max_overround
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, m := range summaries {
		_, err := tx.Exec(ctx, query,
			m.BookKey,
			m.Games,
			m.AvgOverround,
			m.MedianOverround,
			m.MinOverround,
			m.MaxOverround,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert margin summary %s: %w", m.BookKey, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert margin summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all margin summaries ordered by book key.
func (s *MarginStore) List(ctx context.Context) ([]*domain.MarginSummary, error) {
	query := `
		SELECT book_key, n_games, avg_overround, median_overround, min_overround, max_overround
		FROM margin_summaries
		ORDER BY book_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query margin summaries: %w", err)
	}
	defer rows.Close()

	return scanMarginSummaries(rows)
}

// scanMarginSummaries scans rows into margin summary structs.
func scanMarginSummaries(rows pgx.Rows) ([]*domain.MarginSummary, error) {
	var summaries []*domain.MarginSummary

	for rows.Next() {
		m := &domain.MarginSummary{}
		err := rows.Scan(
			&m.BookKey,
			&m.Games,
			&m.AvgOverround,
			&m.MedianOverround,
			&m.MinOverround,
			&m.MaxOverround,
		)
		if err != nil {
			return nil, fmt.Errorf("scan margin summary: %w", err)
		}
		summaries = append(summaries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate margin summaries: %w", err)
	}

	return summaries, nil
}
