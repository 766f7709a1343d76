package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// BestQuoteStore implements storage.BestQuoteStore using PostgreSQL.
type BestQuoteStore struct {
	pool *Pool
}

// NewBestQuoteStore creates a new PostgreSQL best quote store.
func NewBestQuoteStore(pool *Pool) *BestQuoteStore {
	return &BestQuoteStore{pool: pool}
}

// Compile-time check
var _ storage.BestQuoteStore = (*BestQuoteStore)(nil)

// Rebuild replaces the full best quote table in a single transaction.
func (s *BestQuoteStore) Rebuild(ctx context.Context, quotes []*domain.BestMarketQuote) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM best_quotes`); err != nil {
		return fmt.Errorf("clear best quotes: %w", err)
	}

	query := `
		INSERT INTO best_quotes (
			event_id, commence_ts, home_team, away_team,
			best_home_price, best_home_book, best_away_price, best_away_book
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, q := range quotes {
		_, err := tx.Exec(ctx, query,
			q.EventID,
			q.CommenceAt,
			q.HomeTeam,
			q.AwayTeam,
			q.BestHomePrice,
			q.BestHomeBook,
			q.BestAwayPrice,
			q.BestAwayBook,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert best quote %s: %w", q.EventID, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert best quote: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all best quotes ordered by event id.
func (s *BestQuoteStore) List(ctx context.Context) ([]*domain.BestMarketQuote, error) {
	query := `
		SELECT event_id, commence_ts, home_team, away_team,
		       best_home_price, best_home_book, best_away_price, best_away_book
		FROM best_quotes
		ORDER BY event_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query best quotes: %w", err)
	}
	defer rows.Close()

	return scanBestQuotes(rows)
}

// Count returns the number of stored best quote rows.
func (s *BestQuoteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM best_quotes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count best quotes: %w", err)
	}

	return count, nil
}

// scanBestQuotes scans rows into best quote structs.
func scanBestQuotes(rows pgx.Rows) ([]*domain.BestMarketQuote, error) {
	var quotes []*domain.BestMarketQuote

	for rows.Next() {
		q := &domain.BestMarketQuote{}
		err := rows.Scan(
			&q.EventID,
			&q.CommenceAt,
			&q.HomeTeam,
			&q.AwayTeam,
			&q.BestHomePrice,
			&q.BestHomeBook,
			&q.BestAwayPrice,
			&q.BestAwayBook,
		)
		if err != nil {
			return nil, fmt.Errorf("scan best quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate best quotes: %w", err)
	}

	return quotes, nil
}
