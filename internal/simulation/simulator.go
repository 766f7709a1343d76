// Package simulation replays fixed wagering policies over decided games and
// rebuilds each policy's equity curve.
package simulation

import (
	"context"
	"fmt"
	"sort"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/oddsmath"
	"moneyline-lab/internal/storage"
)

// DefaultStake is wagered per game when no stake is configured.
const DefaultStake = 1.0

// Simulator replays every policy in domain.Strategies over the settleable
// facts, one flat stake per game.
type Simulator struct {
	factStore   storage.FactStore
	equityStore storage.EquityStore
	stake       float64
}

// NewSimulator creates a simulator wagering stake per game. Non-positive
// stakes fall back to DefaultStake.
func NewSimulator(factStore storage.FactStore, equityStore storage.EquityStore, stake float64) *Simulator {
	if stake <= 0 {
		stake = DefaultStake
	}
	return &Simulator{
		factStore:   factStore,
		equityStore: equityStore,
		stake:       stake,
	}
}

// Simulate rebuilds the equity table for all strategies. Returns the number
// of points written.
func (s *Simulator) Simulate(ctx context.Context) (int, error) {
	facts, err := s.factStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load game facts: %w", err)
	}

	points := SimulateStrategies(facts, s.stake)

	if err := s.equityStore.Rebuild(ctx, points); err != nil {
		return 0, fmt.Errorf("rebuild equity points: %w", err)
	}

	return len(points), nil
}

// SimulateStrategies settles every strategy against the settleable facts in
// (CommenceAt, EventID) order. Game indexes are 1-based and dense within a
// strategy, so skipped games never leave holes in a curve.
func SimulateStrategies(facts []*domain.GameResultFact, stake float64) []*domain.StrategyEquityPoint {
	games := make([]*domain.GameResultFact, 0, len(facts))
	for _, f := range facts {
		if f.Settleable() {
			games = append(games, f)
		}
	}

	sort.Slice(games, func(i, j int) bool {
		if !games[i].CommenceAt.Equal(games[j].CommenceAt) {
			return games[i].CommenceAt.Before(games[j].CommenceAt)
		}
		return games[i].EventID < games[j].EventID
	})

	var points []*domain.StrategyEquityPoint
	for _, strategy := range domain.Strategies {
		points = append(points, simulateStrategy(strategy, games, stake)...)
	}
	return points
}

func simulateStrategy(strategy domain.Strategy, games []*domain.GameResultFact, stake float64) []*domain.StrategyEquityPoint {
	points := make([]*domain.StrategyEquityPoint, 0, len(games))

	var cumProfit float64
	for i, f := range games {
		picked := strategy.Pick(f.FavoriteSide)
		price := *f.BestHomePrice
		if picked == domain.SideAway {
			price = *f.BestAwayPrice
		}

		profit := -stake
		if f.Winner == picked {
			profit = oddsmath.Profit(price, stake)
		}
		cumProfit += profit

		index := i + 1
		points = append(points, &domain.StrategyEquityPoint{
			Strategy:      strategy,
			GameIndex:     index,
			EventID:       f.EventID,
			ResultEventID: f.ResultEventID,
			CommenceAt:    f.CommenceAt,
			Stake:         stake,
			Price:         price,
			PickedSide:    picked,
			Winner:        f.Winner,
			BetProfit:     profit,
			CumProfit:     cumProfit,
			CumROI:        cumProfit / (float64(index) * stake),
		})
	}

	return points
}
