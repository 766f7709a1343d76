package domain

import "time"

// Moneyline is the only market key the pipeline ingests.
const MarketMoneyline = "h2h"

// PriceQuote represents one sportsbook price observation for one outcome.
// Corresponds to price_quotes table in PostgreSQL. Append-only: many rows
// per (event, book) accumulate as snapshots are taken over time.
type PriceQuote struct {
	SnapshotAt     time.Time  // when the snapshot was taken (UTC)
	SportKey       string     // feed sport identifier, e.g. "basketball_nba"
	EventID        string     // feed event identifier
	CommenceAt     *time.Time // scheduled start (nullable)
	HomeTeam       string     // home team name as the feed spells it
	AwayTeam       string     // away team name as the feed spells it
	BookKey        string     // price source key, e.g. "draftkings"
	BookTitle      string     // price source display name
	BookLastUpdate *time.Time // source-reported line update time (nullable)
	MarketKey      string     // market type, "h2h" for moneyline
	OutcomeName    string     // team name the price applies to
	Price          int        // American odds, signed
}

// ClosingQuote represents the last quote a book posted at or before game
// start. Corresponds to closing_quotes table in PostgreSQL; fully rebuilt
// from price_quotes on every pipeline run.
type ClosingQuote struct {
	EventID    string
	BookKey    string
	SnapshotAt time.Time // snapshot the closing prices came from
	CommenceAt time.Time // always known: selection requires it
	HomeTeam   string
	AwayTeam   string
	HomePrice  *int // nil when no outcome matched the home team string
	AwayPrice  *int // nil when no outcome matched the away team string
}

// BestMarketQuote represents the best available price per side across all
// books at close. Corresponds to best_quotes table in PostgreSQL; fully
// rebuilt from closing_quotes on every pipeline run.
type BestMarketQuote struct {
	EventID       string
	CommenceAt    time.Time
	HomeTeam      string
	AwayTeam      string
	BestHomePrice *int   // max home price over books, nil if no book priced home
	BestHomeBook  string // lexicographically lowest book among ties, "" if nil price
	BestAwayPrice *int
	BestAwayBook  string
}
