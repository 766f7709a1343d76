package storage

import (
	"context"
	"time"

	"moneyline-lab/internal/domain"
)

// PriceQuoteStore provides access to price_quotes storage. The table is
// append-only: quotes are never mutated once written.
type PriceQuoteStore interface {
	// InsertBulk adds quotes atomically, silently skipping rows whose
	// (SnapshotAt, EventID, BookKey, MarketKey, OutcomeName) key already
	// exists. Returns the number of newly inserted rows.
	InsertBulk(ctx context.Context, quotes []*domain.PriceQuote) (int, error)

	// List retrieves all quotes, ordered by (SnapshotAt, EventID, BookKey, OutcomeName) ASC.
	List(ctx context.Context) ([]*domain.PriceQuote, error)

	// Count returns the number of stored quotes.
	Count(ctx context.Context) (int, error)
}

// ResultStore provides access to result_pulls storage.
type ResultStore interface {
	// Upsert writes pulls atomically, replacing rows keyed by
	// (ScoreboardDate, ResultEventID). Returns the number of rows written.
	Upsert(ctx context.Context, pulls []*domain.ResultRecord) (int, error)

	// List retrieves all pulls, ordered by (ScoreboardDate, ResultEventID) ASC.
	List(ctx context.Context) ([]*domain.ResultRecord, error)

	// ListLatest retrieves the canonical pull per result event: maximal
	// PulledAt, ties broken by maximal ScoreboardDate. Ordered by
	// ResultEventID ASC.
	ListLatest(ctx context.Context) ([]*domain.ResultRecord, error)

	// Count returns the number of stored pulls.
	Count(ctx context.Context) (int, error)
}

// ClosingQuoteStore provides access to closing_quotes storage.
type ClosingQuoteStore interface {
	// Rebuild atomically replaces the whole table with rows. A failure
	// leaves the previous contents intact.
	Rebuild(ctx context.Context, rows []*domain.ClosingQuote) error

	// List retrieves all closing quotes, ordered by (EventID, BookKey) ASC.
	List(ctx context.Context) ([]*domain.ClosingQuote, error)
}

// BestQuoteStore provides access to best_quotes storage.
type BestQuoteStore interface {
	// Rebuild atomically replaces the whole table with rows.
	Rebuild(ctx context.Context, rows []*domain.BestMarketQuote) error

	// List retrieves all best-market quotes, ordered by EventID ASC.
	List(ctx context.Context) ([]*domain.BestMarketQuote, error)

	// Count returns the number of best-market events.
	Count(ctx context.Context) (int, error)
}

// MappingStore provides access to game_mappings storage.
type MappingStore interface {
	// Upsert writes mappings atomically, replacing rows keyed by EventID.
	// Returns the number of rows written.
	Upsert(ctx context.Context, mappings []*domain.EntityMapping) (int, error)

	// List retrieves all mappings, ordered by EventID ASC.
	List(ctx context.Context) ([]*domain.EntityMapping, error)
}

// FactStore provides access to game_facts storage.
type FactStore interface {
	// Rebuild atomically replaces the whole table with rows.
	Rebuild(ctx context.Context, facts []*domain.GameResultFact) error

	// List retrieves all facts, ordered by EventID ASC.
	List(ctx context.Context) ([]*domain.GameResultFact, error)

	// GetByEventID retrieves one fact. Returns ErrNotFound if absent.
	GetByEventID(ctx context.Context, eventID string) (*domain.GameResultFact, error)
}

// EquityStore provides access to equity_points storage.
type EquityStore interface {
	// Rebuild atomically replaces the whole table with points, all
	// strategies at once.
	Rebuild(ctx context.Context, points []*domain.StrategyEquityPoint) error

	// List retrieves all points, ordered by (Strategy, GameIndex) ASC.
	List(ctx context.Context) ([]*domain.StrategyEquityPoint, error)

	// ListByStrategy retrieves one strategy's curve, ordered by GameIndex ASC.
	ListByStrategy(ctx context.Context, strategy domain.Strategy) ([]*domain.StrategyEquityPoint, error)
}

// CalibrationStore provides access to calibration_buckets storage.
type CalibrationStore interface {
	// Rebuild atomically replaces the whole table with buckets.
	Rebuild(ctx context.Context, buckets []*domain.CalibrationBucket) error

	// List retrieves all buckets, ordered by Low ASC.
	List(ctx context.Context) ([]*domain.CalibrationBucket, error)
}

// MarginStore provides access to margin_summaries storage.
type MarginStore interface {
	// Rebuild atomically replaces the whole table with summaries.
	Rebuild(ctx context.Context, summaries []*domain.MarginSummary) error

	// List retrieves all summaries, ordered by BookKey ASC.
	List(ctx context.Context) ([]*domain.MarginSummary, error)
}

// FrequencyStore provides access to best_price_shares storage.
type FrequencyStore interface {
	// Rebuild atomically replaces the whole table with counts.
	Rebuild(ctx context.Context, counts []*domain.BestPriceFrequency) error

	// List retrieves all counts, ordered by BookKey ASC.
	List(ctx context.Context) ([]*domain.BestPriceFrequency, error)
}

// KPIStore provides access to kpi_entries storage.
type KPIStore interface {
	// Rebuild atomically replaces the whole table with entries.
	Rebuild(ctx context.Context, entries []*domain.KPIEntry) error

	// List retrieves all entries, ordered by Name ASC.
	List(ctx context.Context) ([]*domain.KPIEntry, error)
}

// PipelineLock serializes full-chain rebuilds against one target. Stages
// must never interleave between two concurrent runs, so the whole chain
// runs under one lock.
type PipelineLock interface {
	// Acquire takes the rebuild lock without blocking, returning a release
	// callback. Returns ErrPipelineBusy when another holder has it.
	Acquire(ctx context.Context) (release func(), err error)
}

// RunArchive appends a finished run's analytics to long-term storage so
// dashboards can compare runs over time. Archive tables are append-only;
// they are not part of the rebuild chain.
type RunArchive interface {
	// ArchiveEquity appends one run's equity points under the run id.
	ArchiveEquity(ctx context.Context, runID string, ranAt time.Time, points []*domain.StrategyEquityPoint) error

	// ArchiveCalibration appends one run's calibration buckets under the run id.
	ArchiveCalibration(ctx context.Context, runID string, ranAt time.Time, buckets []*domain.CalibrationBucket) error

	// ArchiveKPIs appends one run's KPI entries under the run id.
	ArchiveKPIs(ctx context.Context, runID string, ranAt time.Time, entries []*domain.KPIEntry) error
}
