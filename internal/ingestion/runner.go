package ingestion

import (
	"context"
	"fmt"
	"log"
	"time"

	"moneyline-lab/internal/espn"
	"moneyline-lab/internal/oddsapi"
	"moneyline-lab/internal/storage"
)

// DefaultSportKey is the odds feed's identifier for the league the results
// feed defaults to.
const DefaultSportKey = "basketball_nba"

// Runner pulls both feeds and writes the raw tables.
type Runner struct {
	odds        *oddsapi.Client
	scores      *espn.Client
	quoteStore  storage.PriceQuoteStore
	resultStore storage.ResultStore
	sportKey    string
	bookmakers  []string
	now         func() time.Time
	logger      *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Odds        *oddsapi.Client
	Scores      *espn.Client
	QuoteStore  storage.PriceQuoteStore
	ResultStore storage.ResultStore
	SportKey    string   // Default: basketball_nba
	Bookmakers  []string // Optional book filter passed to the odds feed
	Now         func() time.Time
	Logger      *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	sportKey := opts.SportKey
	if sportKey == "" {
		sportKey = DefaultSportKey
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		odds:        opts.Odds,
		scores:      opts.Scores,
		quoteStore:  opts.QuoteStore,
		resultStore: opts.ResultStore,
		sportKey:    sportKey,
		bookmakers:  opts.Bookmakers,
		now:         now,
		logger:      logger,
	}
}

// SnapshotOdds pulls the current odds and appends them to the raw quote
// table. Returns the number of newly inserted rows and the API quota after
// the call; re-pulling unchanged lines inserts nothing.
func (r *Runner) SnapshotOdds(ctx context.Context) (int, *oddsapi.Quota, error) {
	events, quota, err := r.odds.FetchOdds(ctx, r.sportKey, r.bookmakers)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch odds: %w", err)
	}

	quotes := FlattenOdds(r.now().UTC(), events)

	inserted, err := r.quoteStore.InsertBulk(ctx, quotes)
	if err != nil {
		return 0, quota, fmt.Errorf("insert quotes: %w", err)
	}

	r.logger.Printf("odds snapshot: %d events, %d quotes (%d new), quota remaining=%s",
		len(events), len(quotes), inserted, quota.Remaining)

	return inserted, quota, nil
}

// PullResults pulls the scoreboard for each date and upserts the records.
// Returns the total rows written.
func (r *Runner) PullResults(ctx context.Context, dates []string) (int, error) {
	total := 0
	for _, date := range dates {
		scoreboard, err := r.scores.FetchScoreboard(ctx, date)
		if err != nil {
			return total, fmt.Errorf("fetch scoreboard %s: %w", date, err)
		}

		records := FlattenScoreboard(date, r.scores.League(), r.now().UTC(), scoreboard)

		n, err := r.resultStore.Upsert(ctx, records)
		if err != nil {
			return total, fmt.Errorf("upsert results %s: %w", date, err)
		}
		total += n

		r.logger.Printf("results %s: %d games", date, n)
	}
	return total, nil
}
