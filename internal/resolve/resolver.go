package resolve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// Resolver matches priced events to result events by canonicalized team
// names and records the mapping. Events that match nothing are skipped; they
// surface in the quality report instead of failing the run.
type Resolver struct {
	bestStore    storage.BestQuoteStore
	resultStore  storage.ResultStore
	mappingStore storage.MappingStore
	now          func() time.Time
}

// NewResolver creates a new entity resolver. A nil now falls back to
// time.Now.
func NewResolver(bestStore storage.BestQuoteStore, resultStore storage.ResultStore, mappingStore storage.MappingStore, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		bestStore:    bestStore,
		resultStore:  resultStore,
		mappingStore: mappingStore,
		now:          now,
	}
}

// resultIndex holds result events keyed by canonicalized team pairs. Each
// slice is sorted by result event id so ambiguous matches resolve the same
// way on every run.
type resultIndex struct {
	exact map[string][]*domain.ResultRecord // home|away as reported
	set   map[string][]*domain.ResultRecord // both teams, order-insensitive
}

// Resolve rebuilds the event mapping from the current best quotes and the
// canonical result records. Returns the number of events mapped.
func (r *Resolver) Resolve(ctx context.Context) (int, error) {
	best, err := r.bestStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load best quotes: %w", err)
	}

	results, err := r.resultStore.ListLatest(ctx)
	if err != nil {
		return 0, fmt.Errorf("load result records: %w", err)
	}

	index := buildResultIndex(results)
	matchedAt := r.now().UTC()

	var mappings []*domain.EntityMapping
	for _, q := range best {
		record, method := index.match(q.HomeTeam, q.AwayTeam)
		if record == nil {
			continue
		}

		mappings = append(mappings, &domain.EntityMapping{
			EventID:       q.EventID,
			ResultEventID: record.ResultEventID,
			Method:        method,
			MatchedAt:     matchedAt,
		})
	}

	if _, err := r.mappingStore.Upsert(ctx, mappings); err != nil {
		return 0, fmt.Errorf("upsert mappings: %w", err)
	}

	return len(mappings), nil
}

// buildResultIndex indexes the given result records by canonical team pairs.
func buildResultIndex(results []*domain.ResultRecord) *resultIndex {
	idx := &resultIndex{
		exact: make(map[string][]*domain.ResultRecord),
		set:   make(map[string][]*domain.ResultRecord),
	}

	for _, rec := range results {
		home := CanonicalTeam(rec.HomeTeam)
		away := CanonicalTeam(rec.AwayTeam)
		if home == "" || away == "" {
			continue
		}

		idx.exact[pairKey(home, away)] = append(idx.exact[pairKey(home, away)], rec)
		idx.set[setKey(home, away)] = append(idx.set[setKey(home, away)], rec)
	}

	for _, m := range []map[string][]*domain.ResultRecord{idx.exact, idx.set} {
		for _, recs := range m {
			sort.Slice(recs, func(i, j int) bool {
				return recs[i].ResultEventID < recs[j].ResultEventID
			})
		}
	}

	return idx
}

// match finds the result record for a priced event's team pair. Tiers are
// tried in order: same orientation, swapped orientation, then
// order-insensitive. Within a tier the lowest result event id wins.
func (idx *resultIndex) match(homeTeam, awayTeam string) (*domain.ResultRecord, domain.MatchMethod) {
	home := CanonicalTeam(homeTeam)
	away := CanonicalTeam(awayTeam)
	if home == "" || away == "" {
		return nil, ""
	}

	if recs := idx.exact[pairKey(home, away)]; len(recs) > 0 {
		return recs[0], domain.MatchTeamExact
	}
	if recs := idx.exact[pairKey(away, home)]; len(recs) > 0 {
		return recs[0], domain.MatchTeamSwapped
	}
	if recs := idx.set[setKey(home, away)]; len(recs) > 0 {
		return recs[0], domain.MatchTeamSet
	}

	return nil, ""
}

func pairKey(home, away string) string {
	return home + "|" + away
}

func setKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
