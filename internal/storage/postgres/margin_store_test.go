package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func TestMarginStore_RebuildAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarginStore(pool)

	err := store.Rebuild(ctx, []*domain.MarginSummary{
		{BookKey: "fanduel", Games: 80, AvgOverround: 0.043, MedianOverround: 0.042, MinOverround: 0.031, MaxOverround: 0.061},
		{BookKey: "draftkings", Games: 82, AvgOverround: 0.045, MedianOverround: 0.044, MinOverround: 0.032, MaxOverround: 0.067},
	})
	require.NoError(t, err)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "draftkings", summaries[0].BookKey)
	assert.Equal(t, 82, summaries[0].Games)
	assert.InDelta(t, 0.045, summaries[0].AvgOverround, 1e-9)
	assert.Equal(t, "fanduel", summaries[1].BookKey)
}
