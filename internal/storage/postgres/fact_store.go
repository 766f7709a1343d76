package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// FactStore implements storage.FactStore using PostgreSQL.
type FactStore struct {
	pool *Pool
}

// NewFactStore creates a new PostgreSQL fact store.
func NewFactStore(pool *Pool) *FactStore {
	return &FactStore{pool: pool}
}

// Compile-time check
var _ storage.FactStore = (*FactStore)(nil)

// Rebuild replaces the full game fact table in a single transaction.
func (s *FactStore) Rebuild(ctx context.Context, facts []*domain.GameResultFact) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM game_facts`); err != nil {
		return fmt.Errorf("clear game facts: %w", err)
	}

	// winner is NULL for undecided games; Side's zero value marks undecided
	// in memory, so the two are converted at the boundary.
	query := `
		INSERT INTO game_facts (
			event_id, result_event_id, commence_ts, home_team, away_team,
			best_home_price, best_away_price, home_score, away_score,
			winner, favorite_side, underdog_side
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
	`

	for _, f := range facts {
		_, err := tx.Exec(ctx, query,
			f.EventID,
			f.ResultEventID,
			f.CommenceAt,
			f.HomeTeam,
			f.AwayTeam,
			f.BestHomePrice,
			f.BestAwayPrice,
			f.HomeScore,
			f.AwayScore,
			string(f.Winner),
			string(f.FavoriteSide),
			string(f.UnderdogSide),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert game fact %s: %w", f.EventID, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert game fact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all game facts ordered by event id.
func (s *FactStore) List(ctx context.Context) ([]*domain.GameResultFact, error) {
	query := `
		SELECT event_id, result_event_id, commence_ts, home_team, away_team,
		       best_home_price, best_away_price, home_score, away_score,
		       COALESCE(winner, ''), favorite_side, underdog_side
		FROM game_facts
		ORDER BY event_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query game facts: %w", err)
	}
	defer rows.Close()

	return scanGameFacts(rows)
}

// GetByEventID retrieves a single game fact. Returns storage.ErrNotFound if
// the event has no fact row.
func (s *FactStore) GetByEventID(ctx context.Context, eventID string) (*domain.GameResultFact, error) {
	query := `
		SELECT event_id, result_event_id, commence_ts, home_team, away_team,
		       best_home_price, best_away_price, home_score, away_score,
		       COALESCE(winner, ''), favorite_side, underdog_side
		FROM game_facts
		WHERE event_id = $1
	`

	f, err := scanGameFact(s.pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get game fact: %w", err)
	}

	return f, nil
}

// scanGameFact scans a single row into a GameResultFact.
func scanGameFact(row pgx.Row) (*domain.GameResultFact, error) {
	f := &domain.GameResultFact{}
	var winnerStr, favoriteStr, underdogStr string

	err := row.Scan(
		&f.EventID,
		&f.ResultEventID,
		&f.CommenceAt,
		&f.HomeTeam,
		&f.AwayTeam,
		&f.BestHomePrice,
		&f.BestAwayPrice,
		&f.HomeScore,
		&f.AwayScore,
		&winnerStr,
		&favoriteStr,
		&underdogStr,
	)
	if err != nil {
		return nil, err
	}

	f.Winner = domain.Side(winnerStr)
	f.FavoriteSide = domain.Side(favoriteStr)
	f.UnderdogSide = domain.Side(underdogStr)
	return f, nil
}

// scanGameFacts scans rows into game fact structs.
func scanGameFacts(rows pgx.Rows) ([]*domain.GameResultFact, error) {
	var facts []*domain.GameResultFact

	for rows.Next() {
		f := &domain.GameResultFact{}
		var winnerStr, favoriteStr, underdogStr string

		err := rows.Scan(
			&f.EventID,
			&f.ResultEventID,
			&f.CommenceAt,
			&f.HomeTeam,
			&f.AwayTeam,
			&f.BestHomePrice,
			&f.BestAwayPrice,
			&f.HomeScore,
			&f.AwayScore,
			&winnerStr,
			&favoriteStr,
			&underdogStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scan game fact: %w", err)
		}

		f.Winner = domain.Side(winnerStr)
		f.FavoriteSide = domain.Side(favoriteStr)
		f.UnderdogSide = domain.Side(underdogStr)
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game facts: %w", err)
	}

	return facts, nil
}
