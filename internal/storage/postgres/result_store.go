package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new PostgreSQL result store.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time check
var _ storage.ResultStore = (*ResultStore)(nil)

// Upsert writes result records in a single transaction. A record whose
// (scoreboard date, result event id) already exists is overwritten in full.
// Returns the number of records written.
func (s *ResultStore) Upsert(ctx context.Context, records []*domain.ResultRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO result_pulls (
			scoreboard_date, result_event_id, league, pulled_ts, start_ts, status,
			completed, home_team, away_team, home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (scoreboard_date, result_event_id) DO UPDATE SET
			league = EXCLUDED.league,
			pulled_ts = EXCLUDED.pulled_ts,
			start_ts = EXCLUDED.start_ts,
			status = EXCLUDED.status,
			completed = EXCLUDED.completed,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score
	`

	for _, r := range records {
		_, err := tx.Exec(ctx, query,
			r.ScoreboardDate,
			r.ResultEventID,
			r.League,
			r.PulledAt,
			r.StartAt,
			r.Status,
			r.Completed,
			r.HomeTeam,
			r.AwayTeam,
			r.HomeScore,
			r.AwayScore,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert result record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(records), nil
}

// List returns all stored result records ordered by scoreboard date and event id.
func (s *ResultStore) List(ctx context.Context) ([]*domain.ResultRecord, error) {
	query := `
		SELECT scoreboard_date, result_event_id, league, pulled_ts, start_ts, status,
		       completed, home_team, away_team, home_score, away_score
		FROM result_pulls
		ORDER BY scoreboard_date ASC, result_event_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query result records: %w", err)
	}
	defer rows.Close()

	return scanResultRecords(rows)
}

// ListLatest returns one record per result event id, keeping the record from
// the most recent pull (latest pulled_ts, then latest scoreboard_date), ordered
// by result event id.
func (s *ResultStore) ListLatest(ctx context.Context) ([]*domain.ResultRecord, error) {
	query := `
		SELECT DISTINCT ON (result_event_id)
		       scoreboard_date, result_event_id, league, pulled_ts, start_ts, status,
		       completed, home_team, away_team, home_score, away_score
		FROM result_pulls
		ORDER BY result_event_id ASC, pulled_ts DESC, scoreboard_date DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest result records: %w", err)
	}
	defer rows.Close()

	return scanResultRecords(rows)
}

// Count returns the number of stored result records.
func (s *ResultStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM result_pulls`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count result records: %w", err)
	}

	return count, nil
}

// scanResultRecords scans rows into result record structs.
func scanResultRecords(rows pgx.Rows) ([]*domain.ResultRecord, error) {
	var records []*domain.ResultRecord

	for rows.Next() {
		r := &domain.ResultRecord{}
		err := rows.Scan(
			&r.ScoreboardDate,
			&r.ResultEventID,
			&r.League,
			&r.PulledAt,
			&r.StartAt,
			&r.Status,
			&r.Completed,
			&r.HomeTeam,
			&r.AwayTeam,
			&r.HomeScore,
			&r.AwayScore,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result records: %w", err)
	}

	return records, nil
}
