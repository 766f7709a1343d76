package marketquality

import (
	"context"
	"fmt"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// FrequencyAggregator rebuilds per-book best-price counts from the
// best-market quotes.
type FrequencyAggregator struct {
	bestStore      storage.BestQuoteStore
	frequencyStore storage.FrequencyStore
}

// NewFrequencyAggregator creates a new frequency aggregator.
func NewFrequencyAggregator(bestStore storage.BestQuoteStore, frequencyStore storage.FrequencyStore) *FrequencyAggregator {
	return &FrequencyAggregator{
		bestStore:      bestStore,
		frequencyStore: frequencyStore,
	}
}

// Aggregate rebuilds the best-price shares. Returns the number of books
// counted.
func (a *FrequencyAggregator) Aggregate(ctx context.Context) (int, error) {
	best, err := a.bestStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load best quotes: %w", err)
	}

	counts := CountBestPrices(best)

	if err := a.frequencyStore.Rebuild(ctx, counts); err != nil {
		return 0, fmt.Errorf("rebuild best-price shares: %w", err)
	}

	return len(counts), nil
}

// CountBestPrices counts how often each book won a side, ordered by book
// key. Only events with both sides priced contribute; each such event adds
// two slots to the share denominator.
func CountBestPrices(best []*domain.BestMarketQuote) []*domain.BestPriceFrequency {
	type slotCount struct {
		home int
		away int
	}

	byBook := make(map[string]*slotCount)
	totalSlots := 0
	for _, q := range best {
		if q.BestHomeBook == "" || q.BestAwayBook == "" {
			continue
		}

		home, ok := byBook[q.BestHomeBook]
		if !ok {
			home = &slotCount{}
			byBook[q.BestHomeBook] = home
		}
		away, ok := byBook[q.BestAwayBook]
		if !ok {
			away = &slotCount{}
			byBook[q.BestAwayBook] = away
		}

		home.home++
		away.away++
		totalSlots += 2
	}

	counts := make([]*domain.BestPriceFrequency, 0, len(byBook))
	for book, c := range byBook {
		total := c.home + c.away
		share := 0.0
		if totalSlots > 0 {
			share = float64(total) / float64(totalSlots)
		}
		counts = append(counts, &domain.BestPriceFrequency{
			BookKey:    book,
			HomeCount:  c.home,
			AwayCount:  c.away,
			TotalCount: total,
			Share:      share,
		})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].BookKey < counts[j].BookKey
	})

	return counts
}
