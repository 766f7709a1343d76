package domain

import "time"

// StrategyEquityPoint is one settled wager in a policy's equity curve.
// Corresponds to equity_points table in PostgreSQL; fully rebuilt from
// game_facts on every pipeline run. GameIndex is 1-based and dense within a
// strategy, assigned in (CommenceAt, EventID) order.
type StrategyEquityPoint struct {
	Strategy      Strategy
	GameIndex     int
	EventID       string
	ResultEventID string
	CommenceAt    time.Time
	Stake         float64
	Price         int // American odds of the picked side
	PickedSide    Side
	Winner        Side
	BetProfit     float64 // profit for this wager, negative on a loss
	CumProfit     float64 // running sum of BetProfit
	CumROI        float64 // CumProfit / (GameIndex * Stake)
}
