package ingestion

import (
	"testing"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/espn"
)

var pulledAt = time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)

func makeScoreboardEvent(id, state string, completed bool, homeScore, awayScore string) espn.Event {
	return espn.Event{
		ID:   id,
		Date: "2024-11-02T23:00Z",
		Competitions: []espn.Competition{{
			Date: "2024-11-02T23:10Z",
			Competitors: []espn.Competitor{
				{HomeAway: "home", Score: homeScore, Team: espn.Team{DisplayName: "Boston Celtics"}},
				{HomeAway: "away", Score: awayScore, Team: espn.Team{DisplayName: "Miami Heat"}},
			},
		}},
		Status: espn.Status{Type: espn.StatusType{State: state, Completed: completed}},
	}
}

func TestFlattenScoreboard_FinalGame(t *testing.T) {
	scoreboard := &espn.Scoreboard{Events: []espn.Event{
		makeScoreboardEvent("401", "post", true, "112", "104"),
	}}

	records := FlattenScoreboard("20241102", "nba", pulledAt, scoreboard)

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.ScoreboardDate != "20241102" || r.ResultEventID != "401" || r.League != "nba" {
		t.Errorf("Unexpected keys: %+v", r)
	}
	if !r.Completed || r.Status != domain.StatusFinal {
		t.Errorf("Expected a final game, got completed=%v status=%q", r.Completed, r.Status)
	}
	if r.HomeTeam != "Boston Celtics" || r.AwayTeam != "Miami Heat" {
		t.Errorf("Teams wrong: %s vs %s", r.HomeTeam, r.AwayTeam)
	}
	if r.HomeScore == nil || *r.HomeScore != 112 || r.AwayScore == nil || *r.AwayScore != 104 {
		t.Errorf("Scores wrong: %v-%v", r.HomeScore, r.AwayScore)
	}
	if !r.PulledAt.Equal(pulledAt) {
		t.Errorf("PulledAt %v, want %v", r.PulledAt, pulledAt)
	}

	// The competition date wins over the event date.
	wantStart := time.Date(2024, 11, 2, 23, 10, 0, 0, time.UTC)
	if r.StartAt == nil || !r.StartAt.Equal(wantStart) {
		t.Errorf("StartAt %v, want %v", r.StartAt, wantStart)
	}
}

func TestFlattenScoreboard_StatusBuckets(t *testing.T) {
	cases := []struct {
		name          string
		event         espn.Event
		wantStatus    string
		wantCompleted bool
	}{
		{"in progress", makeScoreboardEvent("401", "in", false, "55", "60"), domain.StatusInProgress, false},
		{"scheduled", makeScoreboardEvent("401", "pre", false, "", ""), domain.StatusScheduled, false},
		{"post state without flag", makeScoreboardEvent("401", "post", false, "112", "104"), domain.StatusFinal, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := FlattenScoreboard("20241102", "nba", pulledAt, &espn.Scoreboard{Events: []espn.Event{tc.event}})
			r := records[0]
			if r.Status != tc.wantStatus || r.Completed != tc.wantCompleted {
				t.Errorf("Got status=%q completed=%v, want %q/%v", r.Status, r.Completed, tc.wantStatus, tc.wantCompleted)
			}
		})
	}
}

func TestFlattenScoreboard_FinalDetailTextCounts(t *testing.T) {
	ev := makeScoreboardEvent("401", "", false, "112", "104")
	ev.Status.Type.ShortDetail = "Final/OT"

	records := FlattenScoreboard("20241102", "nba", pulledAt, &espn.Scoreboard{Events: []espn.Event{ev}})

	if !records[0].Completed || records[0].Status != domain.StatusFinal {
		t.Errorf("A Final detail text marks the game complete, got %+v", records[0])
	}
}

func TestFlattenScoreboard_UnparsableScoreIsNil(t *testing.T) {
	records := FlattenScoreboard("20241102", "nba", pulledAt, &espn.Scoreboard{Events: []espn.Event{
		makeScoreboardEvent("401", "pre", false, "TBD", ""),
	}})

	r := records[0]
	if r.HomeScore != nil || r.AwayScore != nil {
		t.Errorf("Non-numeric scores must be nil, got %v-%v", r.HomeScore, r.AwayScore)
	}
}

func TestFlattenScoreboard_SkipsEventsWithoutID(t *testing.T) {
	records := FlattenScoreboard("20241102", "nba", pulledAt, &espn.Scoreboard{Events: []espn.Event{
		makeScoreboardEvent("", "post", true, "112", "104"),
		makeScoreboardEvent("401", "post", true, "99", "90"),
	}})

	if len(records) != 1 || records[0].ResultEventID != "401" {
		t.Fatalf("Events without ids must drop, got %+v", records)
	}
}

func TestFlattenScoreboard_EventDateFallback(t *testing.T) {
	ev := espn.Event{
		ID:     "401",
		Date:   "2024-11-02T23:00Z",
		Status: espn.Status{Type: espn.StatusType{State: "pre"}},
	}

	records := FlattenScoreboard("20241102", "nba", pulledAt, &espn.Scoreboard{Events: []espn.Event{ev}})

	r := records[0]
	wantStart := time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC)
	if r.StartAt == nil || !r.StartAt.Equal(wantStart) {
		t.Errorf("StartAt %v, want the event date %v", r.StartAt, wantStart)
	}
	if r.HomeTeam != "" || r.HomeScore != nil {
		t.Errorf("No competitors means empty teams, got %+v", r)
	}
}

func TestDateRange(t *testing.T) {
	end := time.Date(2024, 11, 3, 15, 0, 0, 0, time.UTC)

	got := DateRange(end, 3)
	want := []string{"20241101", "20241102", "20241103"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d dates, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Date %d is %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDateRange_CrossesMonth(t *testing.T) {
	end := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	got := DateRange(end, 2)
	if len(got) != 2 || got[0] != "20241031" || got[1] != "20241101" {
		t.Fatalf("Unexpected range: %v", got)
	}
}

func TestDateRange_NonPositiveDays(t *testing.T) {
	if got := DateRange(time.Now(), 0); got != nil {
		t.Fatalf("Expected nil, got %v", got)
	}
}
