// Package resolve links priced events to result events by team names.
package resolve

import "strings"

// NormalizeTeam reduces a team name to a comparable form: lowercase,
// non-alphanumerics removed (spaces kept), runs of whitespace collapsed to
// one space. "St. Louis" and "st louis" normalize identically;
// "Trail-Blazers" becomes "trailblazers", not "trail blazers".
func NormalizeTeam(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// teamAliases maps normalized feed spellings to the normalized scoreboard
// spelling. Keys and values are both in NormalizeTeam form.
var teamAliases = map[string]string{
	"la lakers":           "los angeles lakers",
	"la clippers":         "los angeles clippers",
	"ny knicks":           "new york knicks",
	"gs warriors":         "golden state warriors",
	"sa spurs":            "san antonio spurs",
	"no pelicans":         "new orleans pelicans",
	"okc thunder":         "oklahoma city thunder",
	"philadelphia sixers": "philadelphia 76ers",
}

// CanonicalTeam normalizes a team name and applies the alias table.
func CanonicalTeam(name string) string {
	norm := NormalizeTeam(name)
	if alias, ok := teamAliases[norm]; ok {
		return alias
	}
	return norm
}
