// Package marketquality summarizes how books price the market: each book's
// structural margin over its closing lines and how often each book offers
// the best available price.
package marketquality

import (
	"context"
	"fmt"
	"math"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/oddsmath"
	"moneyline-lab/internal/storage"
)

// MarginAggregator rebuilds per-book overround summaries from the closing
// quotes.
type MarginAggregator struct {
	closingStore storage.ClosingQuoteStore
	marginStore  storage.MarginStore
}

// NewMarginAggregator creates a new margin aggregator.
func NewMarginAggregator(closingStore storage.ClosingQuoteStore, marginStore storage.MarginStore) *MarginAggregator {
	return &MarginAggregator{
		closingStore: closingStore,
		marginStore:  marginStore,
	}
}

// Aggregate rebuilds the margin summaries. Returns the number of books
// summarized.
func (a *MarginAggregator) Aggregate(ctx context.Context) (int, error) {
	closings, err := a.closingStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load closing quotes: %w", err)
	}

	summaries := SummarizeMargins(closings)

	if err := a.marginStore.Rebuild(ctx, summaries); err != nil {
		return 0, fmt.Errorf("rebuild margin summaries: %w", err)
	}

	return len(summaries), nil
}

// SummarizeMargins computes each book's overround distribution over its
// two-sided closing lines, ordered by book key. Lines whose implied
// probabilities leave (0, 1) are excluded rather than failing the build.
func SummarizeMargins(closings []*domain.ClosingQuote) []*domain.MarginSummary {
	byBook := make(map[string][]float64)
	for _, c := range closings {
		if c.HomePrice == nil || c.AwayPrice == nil {
			continue
		}

		ph := oddsmath.ImpliedProbability(*c.HomePrice)
		pa := oddsmath.ImpliedProbability(*c.AwayPrice)
		if !inDomain(ph) || !inDomain(pa) {
			continue
		}

		byBook[c.BookKey] = append(byBook[c.BookKey], oddsmath.Overround(*c.HomePrice, *c.AwayPrice))
	}

	summaries := make([]*domain.MarginSummary, 0, len(byBook))
	for book, overrounds := range byBook {
		sort.Float64s(overrounds)

		sum := 0.0
		for _, o := range overrounds {
			sum += o
		}
		n := len(overrounds)

		summaries = append(summaries, &domain.MarginSummary{
			BookKey:         book,
			Games:           n,
			AvgOverround:    sum / float64(n),
			MedianOverround: median(overrounds),
			MinOverround:    overrounds[0],
			MaxOverround:    overrounds[n-1],
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].BookKey < summaries[j].BookKey
	})

	return summaries
}

func inDomain(p float64) bool {
	return p > 0 && p < 1 && !math.IsNaN(p)
}

// median expects xs sorted and non-empty.
func median(xs []float64) float64 {
	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[mid]
	}
	return (xs[mid-1] + xs[mid]) / 2.0
}
