package domain

// Strategy is a fixed wagering policy replayed over decided games.
type Strategy string

const (
	StrategyFavorite Strategy = "favorite" // always back the price favorite
	StrategyUnderdog Strategy = "underdog" // always back the price underdog
	StrategyHome     Strategy = "home"     // always back the home side
	StrategyAway     Strategy = "away"     // always back the away side
)

// Strategies lists every policy in replay order. The order is fixed so the
// equity rebuild is reproducible row for row.
var Strategies = []Strategy{StrategyFavorite, StrategyUnderdog, StrategyHome, StrategyAway}

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	return string(s)
}

// IsValid checks if the strategy is a valid value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFavorite, StrategyUnderdog, StrategyHome, StrategyAway:
		return true
	}
	return false
}

// Pick returns the side the policy backs for a game with the given
// favorite. The favorite's complement is the underdog.
func (s Strategy) Pick(favorite Side) Side {
	switch s {
	case StrategyFavorite:
		return favorite
	case StrategyUnderdog:
		return favorite.Opposite()
	case StrategyHome:
		return SideHome
	case StrategyAway:
		return SideAway
	}
	return ""
}
