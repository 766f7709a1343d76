package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// EquityStore implements storage.EquityStore using PostgreSQL.
type EquityStore struct {
	pool *Pool
}

// NewEquityStore creates a new PostgreSQL equity store.
func NewEquityStore(pool *Pool) *EquityStore {
	return &EquityStore{pool: pool}
}

// Compile-time check
var _ storage.EquityStore = (*EquityStore)(nil)

// Rebuild replaces the full equity point table in a single transaction.
func (s *EquityStore) Rebuild(ctx context.Context, points []*domain.StrategyEquityPoint) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM equity_points`); err != nil {
		return fmt.Errorf("clear equity points: %w", err)
	}

	query := `
		INSERT INTO equity_points (
			strategy, game_index, event_id, result_event_id, commence_ts,
			stake, price_american, picked_side, winner, bet_profit, cum_profit, cum_roi
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, p := range points {
		_, err := tx.Exec(ctx, query,
			string(p.Strategy),
			p.GameIndex,
			p.EventID,
			p.ResultEventID,
			p.CommenceAt,
			p.Stake,
			p.Price,
			string(p.PickedSide),
			string(p.Winner),
			p.BetProfit,
			p.CumProfit,
			p.CumROI,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert equity point %s/%s: %w", p.Strategy, p.EventID, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert equity point: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all equity points ordered by strategy and game index.
func (s *EquityStore) List(ctx context.Context) ([]*domain.StrategyEquityPoint, error) {
	query := `
		SELECT strategy, game_index, event_id, result_event_id, commence_ts,
		       stake, price_american, picked_side, winner, bet_profit, cum_profit, cum_roi
		FROM equity_points
		ORDER BY strategy ASC, game_index ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query equity points: %w", err)
	}
	defer rows.Close()

	return scanEquityPoints(rows)
}

// ListByStrategy returns the equity curve for one strategy ordered by game index.
func (s *EquityStore) ListByStrategy(ctx context.Context, strategy domain.Strategy) ([]*domain.StrategyEquityPoint, error) {
	query := `
		SELECT strategy, game_index, event_id, result_event_id, commence_ts,
		       stake, price_american, picked_side, winner, bet_profit, cum_profit, cum_roi
		FROM equity_points
		WHERE strategy = $1
		ORDER BY game_index ASC
	`

	rows, err := s.pool.Query(ctx, query, string(strategy))
	if err != nil {
		return nil, fmt.Errorf("query equity points by strategy: %w", err)
	}
	defer rows.Close()

	return scanEquityPoints(rows)
}

// scanEquityPoints scans rows into equity point structs.
func scanEquityPoints(rows pgx.Rows) ([]*domain.StrategyEquityPoint, error) {
	var points []*domain.StrategyEquityPoint

	for rows.Next() {
		p := &domain.StrategyEquityPoint{}
		var strategyStr, pickedStr, winnerStr string

		err := rows.Scan(
			&strategyStr,
			&p.GameIndex,
			&p.EventID,
			&p.ResultEventID,
			&p.CommenceAt,
			&p.Stake,
			&p.Price,
			&pickedStr,
			&winnerStr,
			&p.BetProfit,
			&p.CumProfit,
			&p.CumROI,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equity point: %w", err)
		}

		p.Strategy = domain.Strategy(strategyStr)
		p.PickedSide = domain.Side(pickedStr)
		p.Winner = domain.Side(winnerStr)
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity points: %w", err)
	}

	return points, nil
}
