package lines

import (
	"context"
	"fmt"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// BestMarketBuilder derives one row per event holding the best available
// closing price per side across all books.
type BestMarketBuilder struct {
	closingStore storage.ClosingQuoteStore
	bestStore    storage.BestQuoteStore
}

// NewBestMarketBuilder creates a new best market builder.
func NewBestMarketBuilder(closingStore storage.ClosingQuoteStore, bestStore storage.BestQuoteStore) *BestMarketBuilder {
	return &BestMarketBuilder{
		closingStore: closingStore,
		bestStore:    bestStore,
	}
}

// Build rebuilds the best quote table from the closing quotes. Returns the
// number of rows written.
func (b *BestMarketBuilder) Build(ctx context.Context) (int, error) {
	closing, err := b.closingStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load closing quotes: %w", err)
	}

	best := SelectBestQuotes(closing)

	if err := b.bestStore.Rebuild(ctx, best); err != nil {
		return 0, fmt.Errorf("rebuild best quotes: %w", err)
	}

	return len(best), nil
}

// SelectBestQuotes picks, per event and side, the highest American price
// across books. American odds order by bettor value numerically (+150 beats
// +120, -105 beats -110), so the maximum is the best deal on both sides.
// Price ties go to the lexicographically smallest book key. Events keep a
// row even when neither side was quoted at close.
func SelectBestQuotes(closing []*domain.ClosingQuote) []*domain.BestMarketQuote {
	byEvent := make(map[string]*domain.BestMarketQuote)
	var order []string

	for _, c := range closing {
		row, ok := byEvent[c.EventID]
		if !ok {
			row = &domain.BestMarketQuote{
				EventID:    c.EventID,
				CommenceAt: c.CommenceAt,
				HomeTeam:   c.HomeTeam,
				AwayTeam:   c.AwayTeam,
			}
			byEvent[c.EventID] = row
			order = append(order, c.EventID)
		}

		if c.HomePrice != nil && betterPrice(*c.HomePrice, c.BookKey, row.BestHomePrice, row.BestHomeBook) {
			price := *c.HomePrice
			row.BestHomePrice = &price
			row.BestHomeBook = c.BookKey
		}
		if c.AwayPrice != nil && betterPrice(*c.AwayPrice, c.BookKey, row.BestAwayPrice, row.BestAwayBook) {
			price := *c.AwayPrice
			row.BestAwayPrice = &price
			row.BestAwayBook = c.BookKey
		}
	}

	result := make([]*domain.BestMarketQuote, 0, len(order))
	for _, eventID := range order {
		result = append(result, byEvent[eventID])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EventID < result[j].EventID
	})

	return result
}

// betterPrice reports whether the candidate (price, book) beats the current
// best for a side.
func betterPrice(price int, bookKey string, bestPrice *int, bestBook string) bool {
	if bestPrice == nil {
		return true
	}
	if price != *bestPrice {
		return price > *bestPrice
	}
	return bookKey < bestBook
}
