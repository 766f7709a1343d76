package domain

import "time"

// MatchMethod records which resolver tier produced a mapping.
type MatchMethod string

const (
	MatchTeamExact   MatchMethod = "team_exact"   // normalized (home, away) equal
	MatchTeamSwapped MatchMethod = "team_swapped" // normalized pair equal with sides reversed
	MatchTeamSet     MatchMethod = "team_set"     // same two normalized names, either order
)

// String returns the string representation of MatchMethod.
func (m MatchMethod) String() string {
	return string(m)
}

// IsValid checks if the match method is a valid value.
func (m MatchMethod) IsValid() bool {
	return m == MatchTeamExact || m == MatchTeamSwapped || m == MatchTeamSet
}

// EntityMapping links a priced event to a results event.
// Corresponds to game_mappings table in PostgreSQL. One row per priced
// event, idempotently overwritten on re-resolution. A results event claimed
// by more than one priced event is a quality signal, never merged away.
type EntityMapping struct {
	EventID       string // priced-event id (primary key)
	ResultEventID string
	Method        MatchMethod
	MatchedAt     time.Time
}
