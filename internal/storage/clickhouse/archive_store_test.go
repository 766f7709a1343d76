package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func TestRunArchive_ArchiveEquity(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	archive := NewRunArchive(conn)

	ranAt := time.Date(2024, 11, 3, 9, 30, 0, 0, time.UTC)
	points := []*domain.StrategyEquityPoint{
		{
			Strategy:      domain.StrategyFavorite,
			GameIndex:     1,
			EventID:       "evt1",
			ResultEventID: "401",
			CommenceAt:    time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC),
			Stake:         1.0,
			Price:         -150,
			PickedSide:    domain.SideHome,
			Winner:        domain.SideHome,
			BetProfit:     0.6667,
			CumProfit:     0.6667,
			CumROI:        0.6667,
		},
		{
			Strategy:      domain.StrategyUnderdog,
			GameIndex:     1,
			EventID:       "evt1",
			ResultEventID: "401",
			CommenceAt:    time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC),
			Stake:         1.0,
			Price:         130,
			PickedSide:    domain.SideAway,
			Winner:        domain.SideHome,
			BetProfit:     -1.0,
			CumProfit:     -1.0,
			CumROI:        -1.0,
		},
	}

	err := archive.ArchiveEquity(ctx, "run-1", ranAt, points)
	require.NoError(t, err)

	// Same rows under a second run id coexist with the first run's.
	err = archive.ArchiveEquity(ctx, "run-2", ranAt.Add(time.Hour), points)
	require.NoError(t, err)

	var count uint64
	err = conn.QueryRow(ctx, `SELECT count(*) FROM run_equity_points`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	var price int32
	var picked string
	err = conn.QueryRow(ctx, `
		SELECT price_american, picked_side FROM run_equity_points
		WHERE run_id = 'run-1' AND strategy = 'favorite'
	`).Scan(&price, &picked)
	require.NoError(t, err)
	assert.Equal(t, int32(-150), price)
	assert.Equal(t, "home", picked)
}

func TestRunArchive_ArchiveCalibrationAndKPIs(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	archive := NewRunArchive(conn)

	ranAt := time.Date(2024, 11, 3, 9, 30, 0, 0, time.UTC)

	err := archive.ArchiveCalibration(ctx, "run-1", ranAt, []*domain.CalibrationBucket{
		{Label: "0.55-0.60", Low: 0.55, High: 0.60, Games: 20, FavoriteWinRate: 0.55, AvgImplied: 0.57, Diff: -0.02},
	})
	require.NoError(t, err)

	err = archive.ArchiveKPIs(ctx, "run-1", ranAt, []*domain.KPIEntry{
		{Name: "total_games", Value: "164"},
		{Name: "favorite_win_rate", Value: "0.670732"},
	})
	require.NoError(t, err)

	var games uint32
	err = conn.QueryRow(ctx, `
		SELECT n_games FROM run_calibration_buckets WHERE run_id = 'run-1'
	`).Scan(&games)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), games)

	var value string
	err = conn.QueryRow(ctx, `
		SELECT kpi_value FROM run_kpis WHERE run_id = 'run-1' AND kpi_name = 'total_games'
	`).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, "164", value)
}

func TestRunArchive_EmptySlices(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	archive := NewRunArchive(conn)
	ranAt := time.Now().UTC()

	require.NoError(t, archive.ArchiveEquity(ctx, "run-1", ranAt, nil))
	require.NoError(t, archive.ArchiveCalibration(ctx, "run-1", ranAt, nil))
	require.NoError(t, archive.ArchiveKPIs(ctx, "run-1", ranAt, nil))
}
