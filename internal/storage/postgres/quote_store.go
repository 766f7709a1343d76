package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// PriceQuoteStore implements storage.PriceQuoteStore using PostgreSQL.
type PriceQuoteStore struct {
	pool *Pool
}

// NewPriceQuoteStore creates a new PostgreSQL price quote store.
func NewPriceQuoteStore(pool *Pool) *PriceQuoteStore {
	return &PriceQuoteStore{pool: pool}
}

// Compile-time check
var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)

// InsertBulk inserts multiple quotes in a single transaction, skipping rows
// whose identity already exists. Returns the number of rows actually inserted.
func (s *PriceQuoteStore) InsertBulk(ctx context.Context, quotes []*domain.PriceQuote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_quotes (
			snapshot_ts, sport_key, event_id, commence_ts, home_team, away_team,
			book_key, book_title, book_last_update, market_key, outcome_name, price_american
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (snapshot_ts, event_id, book_key, market_key, outcome_name) DO NOTHING
	`

	inserted := 0
	for _, q := range quotes {
		tag, err := tx.Exec(ctx, query,
			q.SnapshotAt,
			q.SportKey,
			q.EventID,
			q.CommenceAt,
			q.HomeTeam,
			q.AwayTeam,
			q.BookKey,
			q.BookTitle,
			q.BookLastUpdate,
			q.MarketKey,
			q.OutcomeName,
			q.Price,
		)
		if err != nil {
			return 0, fmt.Errorf("insert price quote: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

// List returns all stored quotes ordered by snapshot time, event, book and outcome.
func (s *PriceQuoteStore) List(ctx context.Context) ([]*domain.PriceQuote, error) {
	query := `
		SELECT snapshot_ts, sport_key, event_id, commence_ts, home_team, away_team,
		       book_key, book_title, book_last_update, market_key, outcome_name, price_american
		FROM price_quotes
		ORDER BY snapshot_ts ASC, event_id ASC, book_key ASC, outcome_name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query price quotes: %w", err)
	}
	defer rows.Close()

	return scanPriceQuotes(rows)
}

// Count returns the number of stored quote rows.
func (s *PriceQuoteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM price_quotes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count price quotes: %w", err)
	}

	return count, nil
}

// scanPriceQuotes scans rows into quote structs.
func scanPriceQuotes(rows pgx.Rows) ([]*domain.PriceQuote, error) {
	var quotes []*domain.PriceQuote

	for rows.Next() {
		q := &domain.PriceQuote{}
		err := rows.Scan(
			&q.SnapshotAt,
			&q.SportKey,
			&q.EventID,
			&q.CommenceAt,
			&q.HomeTeam,
			&q.AwayTeam,
			&q.BookKey,
			&q.BookTitle,
			&q.BookLastUpdate,
			&q.MarketKey,
			&q.OutcomeName,
			&q.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price quotes: %w", err)
	}

	return quotes, nil
}
