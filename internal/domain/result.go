package domain

import "time"

// Bucketed result statuses. The flattener reduces feed-specific status
// taxonomies to these three.
const (
	StatusFinal      = "Final"
	StatusInProgress = "In Progress"
	StatusScheduled  = "Scheduled"
)

// ResultRecord represents one scoreboard pull for one game.
// Corresponds to result_pulls table in PostgreSQL. Keyed by
// (scoreboard_date, result_event_id): re-pulling the same date upserts in
// place, and the same game may appear under several dates as its status
// evolves. The canonical view of a game is its latest pull (max PulledAt,
// ties broken by max ScoreboardDate).
type ResultRecord struct {
	ScoreboardDate string     // requested date, YYYYMMDD
	ResultEventID  string     // results-feed event identifier
	League         string     // e.g. "nba"
	PulledAt       time.Time  // when this pull happened (UTC)
	StartAt        *time.Time // feed-reported start time (nullable)
	Status         string     // Final | In Progress | Scheduled
	Completed      bool
	HomeTeam       string
	AwayTeam       string
	HomeScore      *int // nil until the feed reports a score
	AwayScore      *int
}
