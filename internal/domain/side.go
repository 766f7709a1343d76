package domain

// Side identifies one of the two sides of a moneyline market.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opposite returns the other side. Undefined sides map to themselves.
func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	}
	return s
}

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideHome || s == SideAway
}
