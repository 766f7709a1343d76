// Package facts joins best-market quotes with resolved results into the
// per-game fact table every downstream aggregate reads.
package facts

import (
	"context"
	"fmt"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// Joiner builds game facts from best quotes, entity mappings and the
// canonical result records. Events missing a mapping or a result are left
// out; the quality checker reports them.
type Joiner struct {
	bestStore    storage.BestQuoteStore
	mappingStore storage.MappingStore
	resultStore  storage.ResultStore
	factStore    storage.FactStore
}

// NewJoiner creates a new results joiner.
func NewJoiner(bestStore storage.BestQuoteStore, mappingStore storage.MappingStore, resultStore storage.ResultStore, factStore storage.FactStore) *Joiner {
	return &Joiner{
		bestStore:    bestStore,
		mappingStore: mappingStore,
		resultStore:  resultStore,
		factStore:    factStore,
	}
}

// Build rebuilds the game fact table. Returns the number of rows written.
func (j *Joiner) Build(ctx context.Context) (int, error) {
	best, err := j.bestStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load best quotes: %w", err)
	}

	mappings, err := j.mappingStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load mappings: %w", err)
	}

	results, err := j.resultStore.ListLatest(ctx)
	if err != nil {
		return 0, fmt.Errorf("load result records: %w", err)
	}

	facts := JoinFacts(best, mappings, results)

	if err := j.factStore.Rebuild(ctx, facts); err != nil {
		return 0, fmt.Errorf("rebuild game facts: %w", err)
	}

	return len(facts), nil
}

// JoinFacts inner-joins quotes to results through the mapping. Each result
// event contributes its single canonical record.
func JoinFacts(best []*domain.BestMarketQuote, mappings []*domain.EntityMapping, results []*domain.ResultRecord) []*domain.GameResultFact {
	mappingByEvent := make(map[string]*domain.EntityMapping, len(mappings))
	for _, m := range mappings {
		mappingByEvent[m.EventID] = m
	}

	resultByID := make(map[string]*domain.ResultRecord, len(results))
	for _, r := range results {
		resultByID[r.ResultEventID] = r
	}

	var facts []*domain.GameResultFact
	for _, q := range best {
		mapping, ok := mappingByEvent[q.EventID]
		if !ok {
			continue
		}
		record, ok := resultByID[mapping.ResultEventID]
		if !ok {
			continue
		}

		favorite := favoriteSide(q.BestHomePrice, q.BestAwayPrice)

		facts = append(facts, &domain.GameResultFact{
			EventID:       q.EventID,
			ResultEventID: record.ResultEventID,
			CommenceAt:    q.CommenceAt,
			HomeTeam:      q.HomeTeam,
			AwayTeam:      q.AwayTeam,
			BestHomePrice: q.BestHomePrice,
			BestAwayPrice: q.BestAwayPrice,
			HomeScore:     record.HomeScore,
			AwayScore:     record.AwayScore,
			Winner:        winnerSide(record.HomeScore, record.AwayScore),
			FavoriteSide:  favorite,
			UnderdogSide:  favorite.Opposite(),
		})
	}

	sort.Slice(facts, func(i, j int) bool {
		return facts[i].EventID < facts[j].EventID
	})

	return facts
}

// winnerSide derives the winner strictly from scores. Missing scores and
// ties leave it undecided.
func winnerSide(home, away *int) domain.Side {
	if home == nil || away == nil {
		return ""
	}
	switch {
	case *home > *away:
		return domain.SideHome
	case *away > *home:
		return domain.SideAway
	default:
		return ""
	}
}

// favoriteSide derives the favorite from prices alone: the lower (more
// negative) price is the favorite. Equal or missing prices make away the
// favorite so the pair always complements.
func favoriteSide(home, away *int) domain.Side {
	if home != nil && away != nil && *home < *away {
		return domain.SideHome
	}
	return domain.SideAway
}
