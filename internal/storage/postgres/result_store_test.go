package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func testResult(scoreboardDate, eventID string, pulledAt time.Time) *domain.ResultRecord {
	start := time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC)
	return &domain.ResultRecord{
		ScoreboardDate: scoreboardDate,
		ResultEventID:  eventID,
		League:         "nba",
		PulledAt:       pulledAt,
		StartAt:        &start,
		Status:         domain.StatusFinal,
		Completed:      true,
		HomeTeam:       "Boston Celtics",
		AwayTeam:       "Miami Heat",
		HomeScore:      ptr(112),
		AwayScore:      ptr(105),
	}
}

func TestResultStore_UpsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewResultStore(pool)

	pulled := time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)
	written, err := store.Upsert(ctx, []*domain.ResultRecord{
		testResult("20241102", "401", pulled),
		testResult("20241102", "402", pulled),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "401", records[0].ResultEventID)
	assert.Equal(t, "402", records[1].ResultEventID)
	require.NotNil(t, records[0].HomeScore)
	assert.Equal(t, 112, *records[0].HomeScore)
}

func TestResultStore_UpsertOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewResultStore(pool)

	pulled := time.Date(2024, 11, 2, 22, 0, 0, 0, time.UTC)
	inProgress := testResult("20241102", "401", pulled)
	inProgress.Status = domain.StatusInProgress
	inProgress.Completed = false
	inProgress.HomeScore = ptr(55)
	inProgress.AwayScore = ptr(48)

	_, err := store.Upsert(ctx, []*domain.ResultRecord{inProgress})
	require.NoError(t, err)

	// Later pull for the same scoreboard date replaces the row in full.
	final := testResult("20241102", "401", pulled.Add(3*time.Hour))
	_, err = store.Upsert(ctx, []*domain.ResultRecord{final})
	require.NoError(t, err)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusFinal, records[0].Status)
	assert.True(t, records[0].Completed)
	assert.Equal(t, 112, *records[0].HomeScore)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResultStore_ListLatestPicksNewestPull(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewResultStore(pool)

	// The same game shows up on two scoreboard dates (late tip crossing
	// midnight). The newer pull wins.
	early := testResult("20241102", "401", time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC))
	early.Status = domain.StatusInProgress
	early.Completed = false

	late := testResult("20241103", "401", time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC))

	other := testResult("20241102", "402", time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC))

	_, err := store.Upsert(ctx, []*domain.ResultRecord{early, late, other})
	require.NoError(t, err)

	latest, err := store.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	// Ordered by event id; event 401 comes from the newer pull.
	assert.Equal(t, "401", latest[0].ResultEventID)
	assert.Equal(t, "20241103", latest[0].ScoreboardDate)
	assert.Equal(t, domain.StatusFinal, latest[0].Status)
	assert.Equal(t, "402", latest[1].ResultEventID)
}
