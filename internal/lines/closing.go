// Package lines derives per-book closing quotes and per-event best-market
// quotes from the raw quote snapshots.
package lines

import (
	"context"
	"fmt"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// ClosingLineBuilder derives one closing quote per (event, book): the
// latest snapshot taken at or before the game's start.
type ClosingLineBuilder struct {
	quoteStore   storage.PriceQuoteStore
	closingStore storage.ClosingQuoteStore
}

// NewClosingLineBuilder creates a new closing line builder.
func NewClosingLineBuilder(quoteStore storage.PriceQuoteStore, closingStore storage.ClosingQuoteStore) *ClosingLineBuilder {
	return &ClosingLineBuilder{
		quoteStore:   quoteStore,
		closingStore: closingStore,
	}
}

// Build rebuilds the closing quote table from the raw quotes. Returns the
// number of rows written.
func (b *ClosingLineBuilder) Build(ctx context.Context) (int, error) {
	quotes, err := b.quoteStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load raw quotes: %w", err)
	}

	closing := SelectClosingQuotes(quotes)

	if err := b.closingStore.Rebuild(ctx, closing); err != nil {
		return 0, fmt.Errorf("rebuild closing quotes: %w", err)
	}

	return len(closing), nil
}

// SelectClosingQuotes picks, for every (event, book) pair, the snapshot
// closest to but not after the game's start, and reads both side prices off
// that snapshot. Snapshots after the start and quotes with no known start
// time never count. A side missing from the closing snapshot stays nil.
func SelectClosingQuotes(quotes []*domain.PriceQuote) []*domain.ClosingQuote {
	type groupKey struct {
		eventID string
		bookKey string
	}

	groups := make(map[groupKey][]*domain.PriceQuote)
	for _, q := range quotes {
		if q.MarketKey != domain.MarketMoneyline {
			continue
		}
		if q.CommenceAt == nil || q.SnapshotAt.After(*q.CommenceAt) {
			continue
		}
		k := groupKey{q.EventID, q.BookKey}
		groups[k] = append(groups[k], q)
	}

	var result []*domain.ClosingQuote
	for _, group := range groups {
		closing := group[0]
		for _, q := range group[1:] {
			if q.SnapshotAt.After(closing.SnapshotAt) {
				closing = q
			}
		}

		row := &domain.ClosingQuote{
			EventID:    closing.EventID,
			BookKey:    closing.BookKey,
			SnapshotAt: closing.SnapshotAt,
			CommenceAt: *closing.CommenceAt,
			HomeTeam:   closing.HomeTeam,
			AwayTeam:   closing.AwayTeam,
		}

		// Several outcome rows share the closing snapshot; take the best
		// price per side, matching outcome names to teams exactly.
		for _, q := range group {
			if !q.SnapshotAt.Equal(closing.SnapshotAt) {
				continue
			}
			switch q.OutcomeName {
			case q.HomeTeam:
				if row.HomePrice == nil || q.Price > *row.HomePrice {
					price := q.Price
					row.HomePrice = &price
				}
			case q.AwayTeam:
				if row.AwayPrice == nil || q.Price > *row.AwayPrice {
					price := q.Price
					row.AwayPrice = &price
				}
			}
		}

		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EventID != result[j].EventID {
			return result[i].EventID < result[j].EventID
		}
		return result[i].BookKey < result[j].BookKey
	})

	return result
}
