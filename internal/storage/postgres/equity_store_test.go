package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func testEquityPoint(strategy domain.Strategy, index int, eventID string, cumProfit float64) *domain.StrategyEquityPoint {
	return &domain.StrategyEquityPoint{
		Strategy:      strategy,
		GameIndex:     index,
		EventID:       eventID,
		ResultEventID: "401",
		CommenceAt:    time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC),
		Stake:         1.0,
		Price:         -150,
		PickedSide:    domain.SideHome,
		Winner:        domain.SideHome,
		BetProfit:     0.6667,
		CumProfit:     cumProfit,
		CumROI:        cumProfit / float64(index),
	}
}

func TestEquityStore_RebuildAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEquityStore(pool)

	err := store.Rebuild(ctx, []*domain.StrategyEquityPoint{
		testEquityPoint(domain.StrategyHome, 2, "evt2", 1.3334),
		testEquityPoint(domain.StrategyFavorite, 1, "evt1", 0.6667),
		testEquityPoint(domain.StrategyHome, 1, "evt1", 0.6667),
	})
	require.NoError(t, err)

	points, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Ordered by strategy, then game index
	assert.Equal(t, domain.StrategyFavorite, points[0].Strategy)
	assert.Equal(t, 1, points[0].GameIndex)
	assert.Equal(t, domain.StrategyHome, points[1].Strategy)
	assert.Equal(t, 1, points[1].GameIndex)
	assert.Equal(t, domain.StrategyHome, points[2].Strategy)
	assert.Equal(t, 2, points[2].GameIndex)

	assert.Equal(t, domain.SideHome, points[0].PickedSide)
	assert.Equal(t, domain.SideHome, points[0].Winner)
	assert.InDelta(t, 0.6667, points[0].BetProfit, 0.0001)
}

func TestEquityStore_ListByStrategy(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEquityStore(pool)

	err := store.Rebuild(ctx, []*domain.StrategyEquityPoint{
		testEquityPoint(domain.StrategyFavorite, 1, "evt1", 0.6667),
		testEquityPoint(domain.StrategyUnderdog, 1, "evt1", -1.0),
		testEquityPoint(domain.StrategyFavorite, 2, "evt2", 1.3334),
	})
	require.NoError(t, err)

	points, err := store.ListByStrategy(ctx, domain.StrategyFavorite)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].GameIndex)
	assert.Equal(t, 2, points[1].GameIndex)
	assert.InDelta(t, 1.3334, points[1].CumProfit, 0.0001)

	points, err = store.ListByStrategy(ctx, domain.StrategyAway)
	require.NoError(t, err)
	assert.Empty(t, points)
}
