// Package calibration buckets the favorite's implied probability against the
// realized favorite win rate, the classic reliability-curve input.
package calibration

import (
	"context"
	"fmt"
	"math"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/oddsmath"
	"moneyline-lab/internal/storage"
)

// DefaultStep is the bucket width when none is configured.
const DefaultStep = 0.05

// Aggregator rebuilds the calibration buckets from the game facts.
type Aggregator struct {
	factStore        storage.FactStore
	calibrationStore storage.CalibrationStore
	step             float64
}

// NewAggregator creates an aggregator with the given bucket width.
// Non-positive widths fall back to DefaultStep.
func NewAggregator(factStore storage.FactStore, calibrationStore storage.CalibrationStore, step float64) *Aggregator {
	if step <= 0 {
		step = DefaultStep
	}
	return &Aggregator{
		factStore:        factStore,
		calibrationStore: calibrationStore,
		step:             step,
	}
}

// Aggregate rebuilds the calibration table. Returns the number of non-empty
// buckets written.
func (a *Aggregator) Aggregate(ctx context.Context) (int, error) {
	facts, err := a.factStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load game facts: %w", err)
	}

	buckets := BuildBuckets(facts, a.step)

	if err := a.calibrationStore.Rebuild(ctx, buckets); err != nil {
		return 0, fmt.Errorf("rebuild calibration buckets: %w", err)
	}

	return len(buckets), nil
}

// bucketRange is one partition of [0.50, 1.00]. The final range is closed on
// both ends so an implied probability of exactly 1.0 still lands somewhere.
type bucketRange struct {
	label  string
	low    float64
	high   float64
	closed bool
}

// makeBuckets partitions [0.50, 1.00) into step-wide ranges. Bounds are
// rounded to two decimals to keep labels stable across float drift.
func makeBuckets(step float64) []bucketRange {
	var ranges []bucketRange
	for x := 0.50; x < 1.00-1e-9; x += step {
		low := math.Round(x*100) / 100
		high := math.Round(math.Min(x+step, 1.00)*100) / 100
		ranges = append(ranges, bucketRange{
			label: fmt.Sprintf("%.2f-%.2f", low, high),
			low:   low,
			high:  high,
		})
	}
	if len(ranges) > 0 {
		ranges[len(ranges)-1].closed = true
	}
	return ranges
}

func (b bucketRange) contains(p float64) bool {
	if p < b.low {
		return false
	}
	if b.closed {
		return p <= b.high
	}
	return p < b.high
}

// BuildBuckets aggregates the settleable facts into non-empty calibration
// buckets ordered by range. Implied probabilities outside (0, 1] are
// excluded rather than failing the build.
func BuildBuckets(facts []*domain.GameResultFact, step float64) []*domain.CalibrationBucket {
	type observation struct {
		implied float64
		won     bool
	}

	var obs []observation
	for _, f := range facts {
		if !f.Settleable() {
			continue
		}

		price := *f.BestHomePrice
		if f.FavoriteSide == domain.SideAway {
			price = *f.BestAwayPrice
		}

		p := oddsmath.ImpliedProbability(price)
		if p <= 0 || p > 1 || math.IsNaN(p) {
			continue
		}

		obs = append(obs, observation{implied: p, won: f.Winner == f.FavoriteSide})
	}

	ranges := makeBuckets(step)

	type bucketAgg struct {
		games      int
		wins       int
		sumImplied float64
	}
	aggs := make([]bucketAgg, len(ranges))

	for _, o := range obs {
		for i, r := range ranges {
			if r.contains(o.implied) {
				aggs[i].games++
				if o.won {
					aggs[i].wins++
				}
				aggs[i].sumImplied += o.implied
				break
			}
		}
	}

	var buckets []*domain.CalibrationBucket
	for i, r := range ranges {
		agg := aggs[i]
		if agg.games == 0 {
			continue
		}

		winRate := float64(agg.wins) / float64(agg.games)
		avgImplied := agg.sumImplied / float64(agg.games)
		buckets = append(buckets, &domain.CalibrationBucket{
			Label:           r.label,
			Low:             r.low,
			High:            r.high,
			Games:           agg.games,
			FavoriteWinRate: winRate,
			AvgImplied:      avgImplied,
			Diff:            winRate - avgImplied,
		})
	}

	return buckets
}
