package marketquality

import (
	"context"
	"testing"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage/memory"
)

// makeBest builds a best quote naming the winning book per side.
func makeBest(eventID, homeBook, awayBook string) *domain.BestMarketQuote {
	q := &domain.BestMarketQuote{
		EventID:    eventID,
		CommenceAt: time.Date(2024, 11, 2, 23, 0, 0, 0, time.UTC),
		HomeTeam:   "Boston Celtics",
		AwayTeam:   "Miami Heat",
	}
	if homeBook != "" {
		q.BestHomePrice = intp(-150)
		q.BestHomeBook = homeBook
	}
	if awayBook != "" {
		q.BestAwayPrice = intp(130)
		q.BestAwayBook = awayBook
	}
	return q
}

func TestCountBestPrices_SplitsSlotsByBook(t *testing.T) {
	counts := CountBestPrices([]*domain.BestMarketQuote{
		makeBest("evt1", "fanduel", "draftkings"),
		makeBest("evt2", "fanduel", "draftkings"),
	})

	if len(counts) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(counts))
	}

	dk, fd := counts[0], counts[1]
	if dk.BookKey != "draftkings" || fd.BookKey != "fanduel" {
		t.Fatalf("Books out of order: %s, %s", dk.BookKey, fd.BookKey)
	}
	if fd.HomeCount != 2 || fd.AwayCount != 0 || fd.TotalCount != 2 {
		t.Errorf("fanduel counts wrong: %+v", fd)
	}
	if dk.HomeCount != 0 || dk.AwayCount != 2 || dk.TotalCount != 2 {
		t.Errorf("draftkings counts wrong: %+v", dk)
	}

	// 2 events x 2 slots; each book took 2 slots.
	if fd.Share != 0.5 || dk.Share != 0.5 {
		t.Errorf("Shares %v and %v, want 0.5 each", fd.Share, dk.Share)
	}
}

func TestCountBestPrices_SameBookBothSides(t *testing.T) {
	counts := CountBestPrices([]*domain.BestMarketQuote{
		makeBest("evt1", "fanduel", "fanduel"),
	})

	if len(counts) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(counts))
	}
	fd := counts[0]
	if fd.HomeCount != 1 || fd.AwayCount != 1 || fd.TotalCount != 2 {
		t.Errorf("Unexpected counts: %+v", fd)
	}
	if fd.Share != 1.0 {
		t.Errorf("Sweeping both slots means share 1.0, got %v", fd.Share)
	}
}

func TestCountBestPrices_SkipsEventsMissingASide(t *testing.T) {
	counts := CountBestPrices([]*domain.BestMarketQuote{
		makeBest("evt1", "fanduel", ""),
		makeBest("evt2", "", "draftkings"),
		makeBest("evt3", "", ""),
		makeBest("evt4", "fanduel", "draftkings"),
	})

	total := 0
	for _, c := range counts {
		total += c.TotalCount
		if c.Share != 0.5 {
			t.Errorf("%s share %v, want 0.5 of evt4's two slots", c.BookKey, c.Share)
		}
	}
	if total != 2 {
		t.Errorf("Only evt4 contributes slots, got %d counted", total)
	}
}

func TestCountBestPrices_Empty(t *testing.T) {
	if counts := CountBestPrices(nil); len(counts) != 0 {
		t.Fatalf("Expected no counts, got %+v", counts)
	}
}

func TestFrequencyAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	bestStore := memory.NewBestQuoteStore()
	if err := bestStore.Rebuild(ctx, []*domain.BestMarketQuote{
		makeBest("evt1", "fanduel", "draftkings"),
	}); err != nil {
		t.Fatalf("seed best quotes: %v", err)
	}

	frequencyStore := memory.NewFrequencyStore()
	agg := NewFrequencyAggregator(bestStore, frequencyStore)

	n, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 books, got %d", n)
	}

	stored, err := frequencyStore.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stored) != 2 || stored[0].BookKey != "draftkings" {
		t.Errorf("Unexpected stored counts: %+v", stored)
	}
}
