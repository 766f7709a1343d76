// Package ingestion pulls the two raw feeds and flattens them into the
// append-only quote and result tables everything downstream is built from.
package ingestion

import (
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/oddsapi"
)

// FlattenOdds turns one odds pull into quote rows, one per priced outcome.
// Markets other than moneyline and outcomes missing a name or price are
// dropped.
func FlattenOdds(snapshotAt time.Time, events []oddsapi.Event) []*domain.PriceQuote {
	var quotes []*domain.PriceQuote
	for _, ev := range events {
		for _, bm := range ev.Bookmakers {
			for _, market := range bm.Markets {
				if market.Key != domain.MarketMoneyline {
					continue
				}
				for _, outcome := range market.Outcomes {
					if outcome.Name == "" || outcome.Price == nil {
						continue
					}
					quotes = append(quotes, &domain.PriceQuote{
						SnapshotAt:     snapshotAt,
						SportKey:       ev.SportKey,
						EventID:        ev.ID,
						CommenceAt:     ev.CommenceTime,
						HomeTeam:       ev.HomeTeam,
						AwayTeam:       ev.AwayTeam,
						BookKey:        bm.Key,
						BookTitle:      bm.Title,
						BookLastUpdate: bm.LastUpdate,
						MarketKey:      market.Key,
						OutcomeName:    outcome.Name,
						Price:          int(*outcome.Price),
					})
				}
			}
		}
	}
	return quotes
}
