package memory

import (
	"context"
	"testing"
	"time"

	"moneyline-lab/internal/domain"
)

func TestResultStore_UpsertOverwrites(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	record := &domain.ResultRecord{
		ScoreboardDate: "20241102",
		ResultEventID:  "401",
		League:         "nba",
		PulledAt:       time.Date(2024, 11, 2, 22, 0, 0, 0, time.UTC),
		Status:         domain.StatusInProgress,
		HomeTeam:       "Boston Celtics",
		AwayTeam:       "Miami Heat",
	}

	if _, err := store.Upsert(ctx, []*domain.ResultRecord{record}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	final := *record
	final.PulledAt = record.PulledAt.Add(3 * time.Hour)
	final.Status = domain.StatusFinal
	final.Completed = true

	if _, err := store.Upsert(ctx, []*domain.ResultRecord{&final}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Status != domain.StatusFinal {
		t.Errorf("Status not overwritten: got %s", records[0].Status)
	}
}

func TestResultStore_ListLatestPicksNewestPull(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	records := []*domain.ResultRecord{
		{
			ScoreboardDate: "20241102",
			ResultEventID:  "401",
			PulledAt:       time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC),
			Status:         domain.StatusInProgress,
		},
		{
			ScoreboardDate: "20241103",
			ResultEventID:  "401",
			PulledAt:       time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC),
			Status:         domain.StatusFinal,
			Completed:      true,
		},
		{
			ScoreboardDate: "20241102",
			ResultEventID:  "402",
			PulledAt:       time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC),
			Status:         domain.StatusFinal,
			Completed:      true,
		},
	}

	if _, err := store.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	latest, err := store.ListLatest(ctx)
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(latest))
	}

	if latest[0].ResultEventID != "401" || latest[0].ScoreboardDate != "20241103" {
		t.Errorf("Wrong canonical record for 401: date %s", latest[0].ScoreboardDate)
	}
	if latest[0].Status != domain.StatusFinal {
		t.Errorf("Expected final status from newest pull, got %s", latest[0].Status)
	}
	if latest[1].ResultEventID != "402" {
		t.Errorf("Wrong order: got %s second", latest[1].ResultEventID)
	}
}

func TestResultStore_ListLatestTieBreaksOnScoreboardDate(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	pulled := time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC)
	records := []*domain.ResultRecord{
		{ScoreboardDate: "20241102", ResultEventID: "401", PulledAt: pulled, Status: domain.StatusInProgress},
		{ScoreboardDate: "20241103", ResultEventID: "401", PulledAt: pulled, Status: domain.StatusFinal},
	}

	if _, err := store.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	latest, err := store.ListLatest(ctx)
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(latest))
	}
	if latest[0].ScoreboardDate != "20241103" {
		t.Errorf("Expected later scoreboard date to win the tie, got %s", latest[0].ScoreboardDate)
	}
}
