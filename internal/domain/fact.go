package domain

import "time"

// GameResultFact joins best-market prices with the resolved result for one
// game. Corresponds to game_facts table in PostgreSQL; fully rebuilt on
// every pipeline run by joining best_quotes, game_mappings and result_pulls.
type GameResultFact struct {
	EventID       string // priced-event id (primary key)
	ResultEventID string
	CommenceAt    time.Time
	HomeTeam      string
	AwayTeam      string
	BestHomePrice *int
	BestAwayPrice *int
	HomeScore     *int
	AwayScore     *int

	// Winner derives strictly from scores; "" means undecided.
	Winner Side

	// FavoriteSide derives purely from prices, independent of outcome:
	// home iff both prices are present and home < away, away otherwise.
	// Always a valid side, even for undecided games.
	FavoriteSide Side
	UnderdogSide Side
}

// Decided reports whether the game has a score-derived winner.
func (f *GameResultFact) Decided() bool {
	return f.Winner.IsValid()
}

// Settleable reports whether the fact can settle a wager: a decided winner
// and a known price on both sides.
func (f *GameResultFact) Settleable() bool {
	return f.Decided() && f.BestHomePrice != nil && f.BestAwayPrice != nil
}
