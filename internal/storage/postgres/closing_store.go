package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// ClosingQuoteStore implements storage.ClosingQuoteStore using PostgreSQL.
type ClosingQuoteStore struct {
	pool *Pool
}

// NewClosingQuoteStore creates a new PostgreSQL closing quote store.
func NewClosingQuoteStore(pool *Pool) *ClosingQuoteStore {
	return &ClosingQuoteStore{pool: pool}
}

// Compile-time check
var _ storage.ClosingQuoteStore = (*ClosingQuoteStore)(nil)

// Rebuild replaces the full closing quote table in a single transaction.
func (s *ClosingQuoteStore) Rebuild(ctx context.Context, quotes []*domain.ClosingQuote) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM closing_quotes`); err != nil {
		return fmt.Errorf("clear closing quotes: %w", err)
	}

	query := `
		INSERT INTO closing_quotes (
			event_id, book_key, snapshot_ts, commence_ts, home_team, away_team,
			home_price, away_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, q := range quotes {
		_, err := tx.Exec(ctx, query,
			q.EventID,
			q.BookKey,
			q.SnapshotAt,
			q.CommenceAt,
			q.HomeTeam,
			q.AwayTeam,
			q.HomePrice,
			q.AwayPrice,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert closing quote %s/%s: %w", q.EventID, q.BookKey, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert closing quote: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all closing quotes ordered by event id and book key.
func (s *ClosingQuoteStore) List(ctx context.Context) ([]*domain.ClosingQuote, error) {
	query := `
		SELECT event_id, book_key, snapshot_ts, commence_ts, home_team, away_team,
		       home_price, away_price
		FROM closing_quotes
		ORDER BY event_id ASC, book_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query closing quotes: %w", err)
	}
	defer rows.Close()

	return scanClosingQuotes(rows)
}

// scanClosingQuotes scans rows into closing quote structs.
func scanClosingQuotes(rows pgx.Rows) ([]*domain.ClosingQuote, error) {
	var quotes []*domain.ClosingQuote

	for rows.Next() {
		q := &domain.ClosingQuote{}
		err := rows.Scan(
			&q.EventID,
			&q.BookKey,
			&q.SnapshotAt,
			&q.CommenceAt,
			&q.HomeTeam,
			&q.AwayTeam,
			&q.HomePrice,
			&q.AwayPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan closing quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closing quotes: %w", err)
	}

	return quotes, nil
}
