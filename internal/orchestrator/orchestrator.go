// Package orchestrator runs the full rebuild chain.
// It coordinates: closing lines → best market → resolution → facts →
// equity/calibration/market quality → KPIs, in that order, under one lock.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"moneyline-lab/internal/calibration"
	"moneyline-lab/internal/facts"
	"moneyline-lab/internal/kpi"
	"moneyline-lab/internal/lines"
	"moneyline-lab/internal/marketquality"
	"moneyline-lab/internal/resolve"
	"moneyline-lab/internal/simulation"
	"moneyline-lab/internal/storage"
)

// Orchestrator coordinates one pipeline run. Every stage is a full rebuild,
// so a run with unchanged raw tables reproduces every derived table exactly.
type Orchestrator struct {
	// Stores
	quoteStore       storage.PriceQuoteStore
	resultStore      storage.ResultStore
	closingStore     storage.ClosingQuoteStore
	bestStore        storage.BestQuoteStore
	mappingStore     storage.MappingStore
	factStore        storage.FactStore
	equityStore      storage.EquityStore
	calibrationStore storage.CalibrationStore
	marginStore      storage.MarginStore
	frequencyStore   storage.FrequencyStore
	kpiStore         storage.KPIStore

	lock    storage.PipelineLock
	archive storage.RunArchive

	stake           float64
	calibrationStep float64
	now             func() time.Time
	verbose         bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	QuoteStore       storage.PriceQuoteStore
	ResultStore      storage.ResultStore
	ClosingStore     storage.ClosingQuoteStore
	BestStore        storage.BestQuoteStore
	MappingStore     storage.MappingStore
	FactStore        storage.FactStore
	EquityStore      storage.EquityStore
	CalibrationStore storage.CalibrationStore
	MarginStore      storage.MarginStore
	FrequencyStore   storage.FrequencyStore
	KPIStore         storage.KPIStore

	// Lock serializes whole runs against one target. Required.
	Lock storage.PipelineLock

	// Archive receives a copy of the analytics output per run. Optional;
	// archive failures become warnings, never run failures.
	Archive storage.RunArchive

	// Options
	Stake           float64 // per-game wager, defaults inside the simulator
	CalibrationStep float64 // bucket width, defaults inside the aggregator
	Now             func() time.Time
	Verbose         bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		quoteStore:       opts.QuoteStore,
		resultStore:      opts.ResultStore,
		closingStore:     opts.ClosingStore,
		bestStore:        opts.BestStore,
		mappingStore:     opts.MappingStore,
		factStore:        opts.FactStore,
		equityStore:      opts.EquityStore,
		calibrationStore: opts.CalibrationStore,
		marginStore:      opts.MarginStore,
		frequencyStore:   opts.FrequencyStore,
		kpiStore:         opts.KPIStore,
		lock:             opts.Lock,
		archive:          opts.Archive,
		stake:            opts.Stake,
		calibrationStep:  opts.CalibrationStep,
		now:              now,
		verbose:          opts.Verbose,
	}
}

// RunResult contains per-stage row counts from one pipeline run.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	ClosingRows     int
	BestMarketRows  int
	MappingRows     int
	FactRows        int
	EquityRows      int
	CalibrationRows int
	MarginRows      int
	FrequencyRows   int
	KPIRows         int

	Warnings []string
}

// Run executes the full rebuild chain. The first failing stage aborts the
// run; that stage's transaction has already rolled back, so every table
// still holds its previous contents.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	release, err := o.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	defer release()

	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: o.now().UTC(),
	}
	o.log("Run %s starting", result.RunID)

	// Stage 1-2: odds-derived tables
	o.log("Stage 1: Selecting closing lines...")
	result.ClosingRows, err = lines.NewClosingLineBuilder(o.quoteStore, o.closingStore).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 1 (closing lines) failed: %w", err)
	}
	o.log("  Wrote %d closing rows", result.ClosingRows)

	o.log("Stage 2: Selecting best market...")
	result.BestMarketRows, err = lines.NewBestMarketBuilder(o.closingStore, o.bestStore).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 2 (best market) failed: %w", err)
	}
	o.log("  Wrote %d best-market rows", result.BestMarketRows)

	// Stage 3: map priced events to result events
	o.log("Stage 3: Resolving events...")
	result.MappingRows, err = resolve.NewResolver(o.bestStore, o.resultStore, o.mappingStore, o.now).Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 3 (resolution) failed: %w", err)
	}
	o.log("  Mapped %d events", result.MappingRows)

	o.log("Stage 4: Joining game facts...")
	result.FactRows, err = facts.NewJoiner(o.bestStore, o.mappingStore, o.resultStore, o.factStore).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 4 (fact join) failed: %w", err)
	}
	o.log("  Wrote %d facts", result.FactRows)

	// Stage 5-8: analytics over the fact layer
	o.log("Stage 5: Simulating strategies...")
	result.EquityRows, err = simulation.NewSimulator(o.factStore, o.equityStore, o.stake).Simulate(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 5 (simulation) failed: %w", err)
	}
	o.log("  Wrote %d equity points", result.EquityRows)

	o.log("Stage 6: Aggregating calibration...")
	result.CalibrationRows, err = calibration.NewAggregator(o.factStore, o.calibrationStore, o.calibrationStep).Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 6 (calibration) failed: %w", err)
	}
	o.log("  Wrote %d buckets", result.CalibrationRows)

	o.log("Stage 7: Summarizing book margins...")
	result.MarginRows, err = marketquality.NewMarginAggregator(o.closingStore, o.marginStore).Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 7 (margins) failed: %w", err)
	}
	o.log("  Wrote %d book summaries", result.MarginRows)

	o.log("Stage 8: Counting best-price shares...")
	result.FrequencyRows, err = marketquality.NewFrequencyAggregator(o.bestStore, o.frequencyStore).Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 8 (best-price shares) failed: %w", err)
	}
	o.log("  Wrote %d book counts", result.FrequencyRows)

	o.log("Stage 9: Rolling up KPIs...")
	result.KPIRows, err = kpi.NewRollup(o.factStore, o.marginStore, o.calibrationStore, o.equityStore, o.kpiStore, o.now).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage 9 (kpis) failed: %w", err)
	}
	o.log("  Wrote %d KPIs", result.KPIRows)

	if o.archive != nil {
		o.archiveRun(ctx, result)
	}

	result.FinishedAt = o.now().UTC()
	o.log("Run %s finished: %d facts, %d equity points, %d KPIs",
		result.RunID, result.FactRows, result.EquityRows, result.KPIRows)

	return result, nil
}

// archiveRun copies the analytics output to the archive. The run has already
// committed, so failures here only warn.
func (o *Orchestrator) archiveRun(ctx context.Context, result *RunResult) {
	warn := func(what string, err error) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("archive %s: %v", what, err))
	}

	points, err := o.equityStore.List(ctx)
	if err != nil {
		warn("equity", err)
	} else if err := o.archive.ArchiveEquity(ctx, result.RunID, result.StartedAt, points); err != nil {
		warn("equity", err)
	}

	buckets, err := o.calibrationStore.List(ctx)
	if err != nil {
		warn("calibration", err)
	} else if err := o.archive.ArchiveCalibration(ctx, result.RunID, result.StartedAt, buckets); err != nil {
		warn("calibration", err)
	}

	entries, err := o.kpiStore.List(ctx)
	if err != nil {
		warn("kpis", err)
	} else if err := o.archive.ArchiveKPIs(ctx, result.RunID, result.StartedAt, entries); err != nil {
		warn("kpis", err)
	}

	o.log("  Archived run %s (%d warnings)", result.RunID, len(result.Warnings))
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
