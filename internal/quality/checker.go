// Package quality audits resolution coverage, result staleness and mapping
// duplication. It only ever reads; a failed check changes no table.
package quality

import (
	"context"
	"fmt"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// DefaultMissingResultsHours is how long after tip-off a game may lack a
// result before the checker counts it as stale.
const DefaultMissingResultsHours = 12

// Check outcomes.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Thresholds. Any breach fails the whole report.
const (
	minMappedPct          = 0.90
	maxMissingAfterCutoff = 5
)

// Report is the outcome of one audit pass.
type Report struct {
	BestEventsTotal  int
	BestEventsMapped int

	// MappedPct is nil when there are no best-market events to judge.
	MappedPct *float64

	MissingResultsTotal       int
	MissingResultsAfterCutoff int
	MissingResultsHours       int

	// DuplicateResultEvents counts result events claimed by more than one
	// priced event.
	DuplicateResultEvents int

	Status  string
	Reasons []string
}

// Checker runs the audit against the analytic tables.
type Checker struct {
	bestStore    storage.BestQuoteStore
	mappingStore storage.MappingStore
	factStore    storage.FactStore
	hours        int
	now          func() time.Time
}

// NewChecker creates a checker counting results missing for more than hours
// past tip-off. Non-positive hours fall back to DefaultMissingResultsHours;
// a nil clock uses time.Now.
func NewChecker(bestStore storage.BestQuoteStore, mappingStore storage.MappingStore, factStore storage.FactStore, hours int, now func() time.Time) *Checker {
	if hours <= 0 {
		hours = DefaultMissingResultsHours
	}
	if now == nil {
		now = time.Now
	}
	return &Checker{
		bestStore:    bestStore,
		mappingStore: mappingStore,
		factStore:    factStore,
		hours:        hours,
		now:          now,
	}
}

// Check runs every audit and returns the combined report.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	best, err := c.bestStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load best quotes: %w", err)
	}

	mappings, err := c.mappingStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	facts, err := c.factStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load game facts: %w", err)
	}

	return BuildReport(best, mappings, facts, c.hours, c.now().UTC()), nil
}

// BuildReport audits the given tables as of now. Three checks run
// independently; every breached threshold appends its own reason.
func BuildReport(best []*domain.BestMarketQuote, mappings []*domain.EntityMapping, facts []*domain.GameResultFact, hours int, now time.Time) *Report {
	report := &Report{
		BestEventsTotal:     len(best),
		MissingResultsHours: hours,
		Status:              StatusPass,
	}

	mapped := make(map[string]bool, len(mappings))
	claims := make(map[string]int, len(mappings))
	for _, m := range mappings {
		mapped[m.EventID] = true
		claims[m.ResultEventID]++
	}

	hasFact := make(map[string]bool, len(facts))
	for _, f := range facts {
		hasFact[f.EventID] = true
	}

	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	for _, q := range best {
		if mapped[q.EventID] {
			report.BestEventsMapped++
		}
		if !hasFact[q.EventID] {
			report.MissingResultsTotal++
			if !q.CommenceAt.After(cutoff) {
				report.MissingResultsAfterCutoff++
			}
		}
	}

	if report.BestEventsTotal > 0 {
		pct := float64(report.BestEventsMapped) / float64(report.BestEventsTotal)
		report.MappedPct = &pct
	}

	for _, n := range claims {
		if n > 1 {
			report.DuplicateResultEvents++
		}
	}

	if report.MappedPct != nil && *report.MappedPct < minMappedPct {
		report.fail("mapped_pct<0.90")
	}
	if report.DuplicateResultEvents > 0 {
		report.fail("duplicate_result_event_id_in_game_mappings>0")
	}
	if report.MissingResultsAfterCutoff > maxMissingAfterCutoff {
		report.fail(fmt.Sprintf("missing_results_after_%dh>%d", hours, maxMissingAfterCutoff))
	}

	return report
}

func (r *Report) fail(reason string) {
	r.Status = StatusFail
	r.Reasons = append(r.Reasons, reason)
}
