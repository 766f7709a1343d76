package lines

import (
	"context"
	"testing"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage/memory"
)

// makeClosing builds a closing quote row for best-market selection.
func makeClosing(eventID, bookKey string, homePrice, awayPrice *int) *domain.ClosingQuote {
	return &domain.ClosingQuote{
		EventID:    eventID,
		BookKey:    bookKey,
		SnapshotAt: tipOff.Add(-5 * time.Minute),
		CommenceAt: tipOff,
		HomeTeam:   "Boston Celtics",
		AwayTeam:   "Miami Heat",
		HomePrice:  homePrice,
		AwayPrice:  awayPrice,
	}
}

func intp(v int) *int { return &v }

func TestSelectBestQuotes_PicksHighestPricePerSide(t *testing.T) {
	closing := []*domain.ClosingQuote{
		makeClosing("evt1", "draftkings", intp(-150), intp(130)),
		makeClosing("evt1", "fanduel", intp(-145), intp(125)),
		makeClosing("evt1", "betmgm", intp(-155), intp(128)),
	}

	result := SelectBestQuotes(closing)
	if len(result) != 1 {
		t.Fatalf("Expected 1 best quote, got %d", len(result))
	}

	b := result[0]
	// -145 is the highest home price, 130 the highest away price
	if *b.BestHomePrice != -145 || b.BestHomeBook != "fanduel" {
		t.Errorf("Wrong home best: %d @ %s", *b.BestHomePrice, b.BestHomeBook)
	}
	if *b.BestAwayPrice != 130 || b.BestAwayBook != "draftkings" {
		t.Errorf("Wrong away best: %d @ %s", *b.BestAwayPrice, b.BestAwayBook)
	}
}

func TestSelectBestQuotes_TieGoesToLowestBookKey(t *testing.T) {
	closing := []*domain.ClosingQuote{
		makeClosing("evt1", "fanduel", intp(-150), nil),
		makeClosing("evt1", "betmgm", intp(-150), nil),
		makeClosing("evt1", "draftkings", intp(-150), nil),
	}

	result := SelectBestQuotes(closing)
	if len(result) != 1 {
		t.Fatalf("Expected 1 best quote, got %d", len(result))
	}
	if result[0].BestHomeBook != "betmgm" {
		t.Errorf("Tie must go to lowest book key, got %s", result[0].BestHomeBook)
	}
}

func TestSelectBestQuotes_IgnoresMissingSides(t *testing.T) {
	closing := []*domain.ClosingQuote{
		makeClosing("evt1", "draftkings", intp(-150), nil),
		makeClosing("evt1", "fanduel", nil, intp(125)),
	}

	result := SelectBestQuotes(closing)
	if len(result) != 1 {
		t.Fatalf("Expected 1 best quote, got %d", len(result))
	}

	b := result[0]
	if *b.BestHomePrice != -150 || b.BestHomeBook != "draftkings" {
		t.Errorf("Wrong home best: %v @ %s", b.BestHomePrice, b.BestHomeBook)
	}
	if *b.BestAwayPrice != 125 || b.BestAwayBook != "fanduel" {
		t.Errorf("Wrong away best: %v @ %s", b.BestAwayPrice, b.BestAwayBook)
	}
}

func TestSelectBestQuotes_KeepsEventWithNoPrices(t *testing.T) {
	closing := []*domain.ClosingQuote{
		makeClosing("evt1", "draftkings", nil, nil),
	}

	result := SelectBestQuotes(closing)
	if len(result) != 1 {
		t.Fatalf("Event with no priced sides must still emit a row, got %d", len(result))
	}
	if result[0].BestHomePrice != nil || result[0].BestAwayPrice != nil {
		t.Error("Expected both sides nil")
	}
	if result[0].BestHomeBook != "" || result[0].BestAwayBook != "" {
		t.Error("Expected both book keys empty")
	}
}

func TestSelectBestQuotes_PositiveBeatsNegative(t *testing.T) {
	closing := []*domain.ClosingQuote{
		makeClosing("evt1", "draftkings", nil, intp(-105)),
		makeClosing("evt1", "fanduel", nil, intp(110)),
	}

	result := SelectBestQuotes(closing)
	if *result[0].BestAwayPrice != 110 {
		t.Errorf("+110 beats -105, got %d", *result[0].BestAwayPrice)
	}
}

func TestBestMarketBuilder_Build(t *testing.T) {
	ctx := context.Background()
	closingStore := memory.NewClosingQuoteStore()
	bestStore := memory.NewBestQuoteStore()

	err := closingStore.Rebuild(ctx, []*domain.ClosingQuote{
		makeClosing("evt1", "draftkings", intp(-150), intp(130)),
		makeClosing("evt1", "fanduel", intp(-145), intp(125)),
	})
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	builder := NewBestMarketBuilder(closingStore, bestStore)
	n, err := builder.Build(ctx)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row written, got %d", n)
	}

	rows, err := bestStore.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 stored row, got %d", len(rows))
	}
	if *rows[0].BestHomePrice != -145 || *rows[0].BestAwayPrice != 130 {
		t.Errorf("Wrong best prices: %d / %d", *rows[0].BestHomePrice, *rows[0].BestAwayPrice)
	}
}
