package ingestion

import (
	"testing"
	"time"

	"moneyline-lab/internal/oddsapi"
)

func floatp(v float64) *float64 { return &v }

func timep(t time.Time) *time.Time { return &t }

var snapshotAt = time.Date(2024, 11, 2, 22, 50, 0, 0, time.UTC)

func TestFlattenOdds(t *testing.T) {
	tip := time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC)
	events := []oddsapi.Event{{
		ID:           "evt1",
		SportKey:     "basketball_nba",
		CommenceTime: timep(tip),
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		Bookmakers: []oddsapi.Bookmaker{{
			Key:   "draftkings",
			Title: "DraftKings",
			Markets: []oddsapi.Market{{
				Key: "h2h",
				Outcomes: []oddsapi.Outcome{
					{Name: "Boston Celtics", Price: floatp(-150)},
					{Name: "Miami Heat", Price: floatp(130)},
				},
			}},
		}},
	}}

	quotes := FlattenOdds(snapshotAt, events)

	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(quotes))
	}

	q := quotes[0]
	if q.EventID != "evt1" || q.BookKey != "draftkings" || q.MarketKey != "h2h" {
		t.Errorf("Unexpected quote: %+v", q)
	}
	if q.OutcomeName != "Boston Celtics" || q.Price != -150 {
		t.Errorf("Unexpected outcome: %s %d", q.OutcomeName, q.Price)
	}
	if !q.SnapshotAt.Equal(snapshotAt) {
		t.Errorf("Snapshot time %v, want %v", q.SnapshotAt, snapshotAt)
	}
	if q.CommenceAt == nil || !q.CommenceAt.Equal(tip) {
		t.Errorf("Commence time %v, want %v", q.CommenceAt, tip)
	}
}

func TestFlattenOdds_SkipsOtherMarkets(t *testing.T) {
	events := []oddsapi.Event{{
		ID: "evt1",
		Bookmakers: []oddsapi.Bookmaker{{
			Key: "draftkings",
			Markets: []oddsapi.Market{
				{Key: "spreads", Outcomes: []oddsapi.Outcome{{Name: "Boston Celtics", Price: floatp(-110)}}},
				{Key: "h2h", Outcomes: []oddsapi.Outcome{{Name: "Boston Celtics", Price: floatp(-150)}}},
			},
		}},
	}}

	quotes := FlattenOdds(snapshotAt, events)

	if len(quotes) != 1 || quotes[0].MarketKey != "h2h" {
		t.Fatalf("Only moneyline rows belong, got %+v", quotes)
	}
}

func TestFlattenOdds_SkipsIncompleteOutcomes(t *testing.T) {
	events := []oddsapi.Event{{
		ID: "evt1",
		Bookmakers: []oddsapi.Bookmaker{{
			Key: "draftkings",
			Markets: []oddsapi.Market{{
				Key: "h2h",
				Outcomes: []oddsapi.Outcome{
					{Name: "", Price: floatp(-150)},
					{Name: "Miami Heat", Price: nil},
					{Name: "Boston Celtics", Price: floatp(-150)},
				},
			}},
		}},
	}}

	quotes := FlattenOdds(snapshotAt, events)

	if len(quotes) != 1 || quotes[0].OutcomeName != "Boston Celtics" {
		t.Fatalf("Nameless and priceless outcomes must drop, got %+v", quotes)
	}
}

func TestFlattenOdds_Empty(t *testing.T) {
	if quotes := FlattenOdds(snapshotAt, nil); len(quotes) != 0 {
		t.Fatalf("Expected no quotes, got %d", len(quotes))
	}
}
