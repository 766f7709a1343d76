package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func TestFrequencyStore_RebuildAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFrequencyStore(pool)

	err := store.Rebuild(ctx, []*domain.BestPriceFrequency{
		{BookKey: "fanduel", HomeCount: 30, AwayCount: 25, TotalCount: 55, Share: 0.275},
		{BookKey: "draftkings", HomeCount: 45, AwayCount: 50, TotalCount: 95, Share: 0.475},
	})
	require.NoError(t, err)

	freqs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, freqs, 2)

	assert.Equal(t, "draftkings", freqs[0].BookKey)
	assert.Equal(t, 95, freqs[0].TotalCount)
	assert.InDelta(t, 0.475, freqs[0].Share, 1e-9)
	assert.Equal(t, "fanduel", freqs[1].BookKey)
}
