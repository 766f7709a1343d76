package resolve

import "testing"

func TestNormalizeTeam(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Boston Celtics", "boston celtics"},
		{"  Boston   Celtics  ", "boston celtics"},
		{"St. Louis", "st louis"},
		{"Philadelphia 76ers", "philadelphia 76ers"},
		{"Trail-Blazers", "trailblazers"},
		{"", ""},
		{"***", ""},
	}

	for _, c := range cases {
		if got := NormalizeTeam(c.in); got != c.want {
			t.Errorf("NormalizeTeam(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalTeam_AppliesAliases(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LA Lakers", "los angeles lakers"},
		{"la  lakers", "los angeles lakers"},
		{"Los Angeles Lakers", "los angeles lakers"},
		{"OKC Thunder", "oklahoma city thunder"},
		{"Boston Celtics", "boston celtics"},
	}

	for _, c := range cases {
		if got := CanonicalTeam(c.in); got != c.want {
			t.Errorf("CanonicalTeam(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
