package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func TestMappingStore_UpsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMappingStore(pool)

	matched := time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC)
	written, err := store.Upsert(ctx, []*domain.EntityMapping{
		{EventID: "evt2", ResultEventID: "402", Method: domain.MatchTeamSwapped, MatchedAt: matched},
		{EventID: "evt1", ResultEventID: "401", Method: domain.MatchTeamExact, MatchedAt: matched},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	mappings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "evt1", mappings[0].EventID)
	assert.Equal(t, domain.MatchTeamExact, mappings[0].Method)
	assert.Equal(t, "evt2", mappings[1].EventID)
	assert.Equal(t, domain.MatchTeamSwapped, mappings[1].Method)
}

func TestMappingStore_UpsertOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMappingStore(pool)

	matched := time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC)
	_, err := store.Upsert(ctx, []*domain.EntityMapping{
		{EventID: "evt1", ResultEventID: "401", Method: domain.MatchTeamSet, MatchedAt: matched},
	})
	require.NoError(t, err)

	// A later resolver run can re-map the event to a better match.
	_, err = store.Upsert(ctx, []*domain.EntityMapping{
		{EventID: "evt1", ResultEventID: "409", Method: domain.MatchTeamExact, MatchedAt: matched.Add(time.Hour)},
	})
	require.NoError(t, err)

	mappings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "409", mappings[0].ResultEventID)
	assert.Equal(t, domain.MatchTeamExact, mappings[0].Method)
}
