// Package kpi flattens every aggregate into the scalar key-value summary
// dashboards read.
package kpi

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// Rollup rebuilds the KPI table from the fact and aggregate tables.
type Rollup struct {
	factStore        storage.FactStore
	marginStore      storage.MarginStore
	calibrationStore storage.CalibrationStore
	equityStore      storage.EquityStore
	kpiStore         storage.KPIStore
	now              func() time.Time
}

// NewRollup creates a KPI rollup. Passing a nil clock uses time.Now.
func NewRollup(factStore storage.FactStore, marginStore storage.MarginStore, calibrationStore storage.CalibrationStore, equityStore storage.EquityStore, kpiStore storage.KPIStore, now func() time.Time) *Rollup {
	if now == nil {
		now = time.Now
	}
	return &Rollup{
		factStore:        factStore,
		marginStore:      marginStore,
		calibrationStore: calibrationStore,
		equityStore:      equityStore,
		kpiStore:         kpiStore,
		now:              now,
	}
}

// Build rebuilds the KPI table. Returns the number of entries written.
func (r *Rollup) Build(ctx context.Context) (int, error) {
	facts, err := r.factStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load game facts: %w", err)
	}

	summaries, err := r.marginStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load margin summaries: %w", err)
	}

	buckets, err := r.calibrationStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load calibration buckets: %w", err)
	}

	points, err := r.equityStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load equity points: %w", err)
	}

	entries := BuildEntries(facts, summaries, buckets, points, r.now().UTC())

	if err := r.kpiStore.Rebuild(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild kpi entries: %w", err)
	}

	return len(entries), nil
}

// BuildEntries computes every KPI from already-built aggregates. Strategies
// with no equity points contribute no entries; everything else degrades to
// zero instead of disappearing.
func BuildEntries(facts []*domain.GameResultFact, summaries []*domain.MarginSummary, buckets []*domain.CalibrationBucket, points []*domain.StrategyEquityPoint, builtAt time.Time) []*domain.KPIEntry {
	var entries []*domain.KPIEntry
	add := func(name, value string) {
		entries = append(entries, &domain.KPIEntry{Name: name, Value: value})
	}

	totalGames := 0
	favoriteWins := 0
	for _, f := range facts {
		if !f.Decided() {
			continue
		}
		totalGames++
		if f.Winner == f.FavoriteSide {
			favoriteWins++
		}
	}
	add("total_games", strconv.Itoa(totalGames))

	favoriteWinRate := 0.0
	if totalGames > 0 {
		favoriteWinRate = float64(favoriteWins) / float64(totalGames)
	}
	add("favorite_win_rate", formatRate(favoriteWinRate))

	avgOverround := 0.0
	if len(summaries) > 0 {
		for _, s := range summaries {
			avgOverround += s.AvgOverround
		}
		avgOverround /= float64(len(summaries))
	}
	add("avg_overround_across_books", formatRate(avgOverround))

	weightedErr := 0.0
	weightedN := 0
	for _, b := range buckets {
		weightedErr += math.Abs(b.Diff) * float64(b.Games)
		weightedN += b.Games
	}
	mae := 0.0
	if weightedN > 0 {
		mae = weightedErr / float64(weightedN)
	}
	add("calibration_weighted_mae", formatRate(mae))

	// The curve's end is the point with the highest game index.
	last := make(map[domain.Strategy]*domain.StrategyEquityPoint)
	for _, p := range points {
		if prev, ok := last[p.Strategy]; !ok || p.GameIndex > prev.GameIndex {
			last[p.Strategy] = p
		}
	}
	for _, strategy := range domain.Strategies {
		p, ok := last[strategy]
		if !ok {
			continue
		}
		add("roi_"+string(strategy), formatRate(p.CumROI))
		add("net_profit_"+string(strategy), formatRate(p.CumProfit))
	}

	add("kpis_built_ts_utc", builtAt.Truncate(time.Second).Format(time.RFC3339))

	return entries
}

func formatRate(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
