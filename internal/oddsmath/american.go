// Package oddsmath converts American odds into the quantities the pipeline
// aggregates: implied probability, settlement profit, and overround.
package oddsmath

import "math"

// ImpliedProbability converts American odds to the win probability the price
// implies, with no vig removal.
//
//	+200 -> 100/(200+100) = 0.3333
//	-245 -> 245/(245+100) = 0.7101
func ImpliedProbability(odds int) float64 {
	if odds < 0 {
		return float64(-odds) / (float64(-odds) + 100.0)
	}
	return 100.0 / (float64(odds) + 100.0)
}

// Profit returns the winnings on a successful wager at the given price,
// excluding the returned stake.
//
//	-150, stake 1 -> 100/150 = 0.6667
//	+130, stake 1 -> 130/100 = 1.30
func Profit(odds int, stake float64) float64 {
	if odds < 0 {
		return stake * (100.0 / math.Abs(float64(odds)))
	}
	return stake * (float64(odds) / 100.0)
}

// Overround returns the market's structural margin: the sum of both sides'
// implied probabilities minus one. A fair two-way market has overround 0.
func Overround(homeOdds, awayOdds int) float64 {
	return ImpliedProbability(homeOdds) + ImpliedProbability(awayOdds) - 1.0
}
