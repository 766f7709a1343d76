package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyline-lab/internal/domain"
)

func testClosingQuote(eventID, bookKey string, homePrice, awayPrice *int) *domain.ClosingQuote {
	return &domain.ClosingQuote{
		EventID:    eventID,
		BookKey:    bookKey,
		SnapshotAt: time.Date(2024, 11, 2, 22, 55, 0, 0, time.UTC),
		CommenceAt: time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC),
		HomeTeam:   "Boston Celtics",
		AwayTeam:   "Miami Heat",
		HomePrice:  homePrice,
		AwayPrice:  awayPrice,
	}
}

func TestClosingQuoteStore_RebuildAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosingQuoteStore(pool)

	err := store.Rebuild(ctx, []*domain.ClosingQuote{
		testClosingQuote("evt1", "fanduel", ptr(-148), ptr(128)),
		testClosingQuote("evt1", "draftkings", ptr(-150), ptr(130)),
	})
	require.NoError(t, err)

	quotes, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Ordered by book key within the event
	assert.Equal(t, "draftkings", quotes[0].BookKey)
	assert.Equal(t, "fanduel", quotes[1].BookKey)
	require.NotNil(t, quotes[0].HomePrice)
	assert.Equal(t, -150, *quotes[0].HomePrice)
}

func TestClosingQuoteStore_RebuildReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosingQuoteStore(pool)

	err := store.Rebuild(ctx, []*domain.ClosingQuote{
		testClosingQuote("evt1", "draftkings", ptr(-150), ptr(130)),
		testClosingQuote("evt2", "draftkings", ptr(-200), ptr(170)),
	})
	require.NoError(t, err)

	// A rebuild from different inputs fully replaces the previous rows.
	err = store.Rebuild(ctx, []*domain.ClosingQuote{
		testClosingQuote("evt3", "fanduel", ptr(105), ptr(-125)),
	})
	require.NoError(t, err)

	quotes, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "evt3", quotes[0].EventID)
}

func TestClosingQuoteStore_RebuildEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosingQuoteStore(pool)

	err := store.Rebuild(ctx, []*domain.ClosingQuote{
		testClosingQuote("evt1", "draftkings", ptr(-150), ptr(130)),
	})
	require.NoError(t, err)

	err = store.Rebuild(ctx, nil)
	require.NoError(t, err)

	quotes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestClosingQuoteStore_OneSidedQuote(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosingQuoteStore(pool)

	// A book that only quoted the home side at close keeps NULL away price.
	err := store.Rebuild(ctx, []*domain.ClosingQuote{
		testClosingQuote("evt1", "draftkings", ptr(-150), nil),
	})
	require.NoError(t, err)

	quotes, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.NotNil(t, quotes[0].HomePrice)
	assert.Nil(t, quotes[0].AwayPrice)
}
