package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func TestKPIStore_RebuildAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewKPIStore(pool)

	err := store.Rebuild(ctx, []*domain.KPIEntry{
		{Name: "total_games", Value: "164"},
		{Name: "favorite_win_rate", Value: "0.670732"},
	})
	require.NoError(t, err)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Ordered by name
	assert.Equal(t, "favorite_win_rate", entries[0].Name)
	assert.Equal(t, "0.670732", entries[0].Value)
	assert.Equal(t, "total_games", entries[1].Name)

	// Rebuild replaces the previous rollup entirely.
	err = store.Rebuild(ctx, []*domain.KPIEntry{{Name: "total_games", Value: "165"}})
	require.NoError(t, err)

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "165", entries[0].Value)
}
