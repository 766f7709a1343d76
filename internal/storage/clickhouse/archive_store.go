package clickhouse

import (
	"context"
	"fmt"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// RunArchive implements storage.RunArchive using ClickHouse. Each pipeline
// run appends its analytics output under the run's id; nothing is ever
// rewritten.
type RunArchive struct {
	conn *Conn
}

// NewRunArchive creates a new ClickHouse run archive.
func NewRunArchive(conn *Conn) *RunArchive {
	return &RunArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.RunArchive = (*RunArchive)(nil)

// ArchiveEquity appends one run's equity points.
func (a *RunArchive) ArchiveEquity(ctx context.Context, runID string, ranAt time.Time, points []*domain.StrategyEquityPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO run_equity_points (
			run_id, ran_at, strategy, game_index, event_id, result_event_id,
			commence_ts, stake, price_american, picked_side, winner,
			bet_profit, cum_profit, cum_roi
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare equity batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			runID, ranAt, string(p.Strategy), uint32(p.GameIndex),
			p.EventID, p.ResultEventID, p.CommenceAt, p.Stake,
			int32(p.Price), string(p.PickedSide), string(p.Winner),
			p.BetProfit, p.CumProfit, p.CumROI,
		)
		if err != nil {
			return fmt.Errorf("append equity point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send equity batch: %w", err)
	}

	return nil
}

// ArchiveCalibration appends one run's calibration buckets.
func (a *RunArchive) ArchiveCalibration(ctx context.Context, runID string, ranAt time.Time, buckets []*domain.CalibrationBucket) error {
	if len(buckets) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO run_calibration_buckets (
			run_id, ran_at, bucket_label, bucket_low, bucket_high, n_games,
			favorite_win_rate, avg_implied_prob, diff_actual_minus_implied
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare calibration batch: %w", err)
	}

	for _, b := range buckets {
		err = batch.Append(
			runID, ranAt, b.Label, b.Low, b.High, uint32(b.Games),
			b.FavoriteWinRate, b.AvgImplied, b.Diff,
		)
		if err != nil {
			return fmt.Errorf("append calibration bucket: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send calibration batch: %w", err)
	}

	return nil
}

// ArchiveKPIs appends one run's KPI entries.
func (a *RunArchive) ArchiveKPIs(ctx context.Context, runID string, ranAt time.Time, entries []*domain.KPIEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO run_kpis (run_id, ran_at, kpi_name, kpi_value)
	`)
	if err != nil {
		return fmt.Errorf("prepare kpi batch: %w", err)
	}

	for _, e := range entries {
		if err := batch.Append(runID, ranAt, e.Name, e.Value); err != nil {
			return fmt.Errorf("append kpi entry: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send kpi batch: %w", err)
	}

	return nil
}
