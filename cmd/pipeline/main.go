// Package main provides the rebuild pipeline entry point.
// Executes: closing lines → best market → resolution → facts →
// equity/calibration/market quality → KPIs
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneyline-lab/internal/calibration"
	"moneyline-lab/internal/orchestrator"
	"moneyline-lab/internal/quality"
	"moneyline-lab/internal/simulation"
	"moneyline-lab/internal/storage"
	chstore "moneyline-lab/internal/storage/clickhouse"
	"moneyline-lab/internal/storage/memory"
	"moneyline-lab/internal/storage/migrations"
	pgstore "moneyline-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	backendFlag := flag.String("backend", envOr("STORAGE_BACKEND", "postgres"), "Storage backend: postgres or memory")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for run archiving (optional)")
	stake := flag.Float64("stake", simulation.DefaultStake, "Per-game wager for the strategy simulation")
	calibrationStep := flag.Float64("calibration-step", calibration.DefaultStep, "Calibration bucket width")
	runQC := flag.Bool("qc", false, "Run data quality checks after the rebuild")
	missingHours := flag.Int("missing-results-hours", quality.DefaultMissingResultsHours, "Hours after tip-off before a missing result counts as stale (with -qc)")
	failOnQC := flag.Bool("fail-on-qc", false, "Exit non-zero if QC fails thresholds (implies -qc)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	backend, err := storage.ParseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --backend: %v\n", err)
		os.Exit(1)
	}
	if backend == storage.BackendPostgres && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "--postgres-dsn is required for the postgres backend (use --backend=memory for in-memory storage)")
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	// Create stores
	stores, cleanup, err := createStores(ctx, backend, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// Run the full rebuild chain
	fmt.Println("=== Rebuild Pipeline ===")
	orch := orchestrator.New(orchestrator.Options{
		QuoteStore:       stores.quoteStore,
		ResultStore:      stores.resultStore,
		ClosingStore:     stores.closingStore,
		BestStore:        stores.bestStore,
		MappingStore:     stores.mappingStore,
		FactStore:        stores.factStore,
		EquityStore:      stores.equityStore,
		CalibrationStore: stores.calibrationStore,
		MarginStore:      stores.marginStore,
		FrequencyStore:   stores.frequencyStore,
		KPIStore:         stores.kpiStore,
		Lock:             stores.lock,
		Archive:          stores.archive,
		Stake:            *stake,
		CalibrationStep:  *calibrationStep,
		Verbose:          *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s completed in %v:\n", result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Printf("  Closing lines: %d\n", result.ClosingRows)
	fmt.Printf("  Best market: %d\n", result.BestMarketRows)
	fmt.Printf("  Mappings: %d\n", result.MappingRows)
	fmt.Printf("  Facts: %d\n", result.FactRows)
	fmt.Printf("  Equity points: %d\n", result.EquityRows)
	fmt.Printf("  Calibration buckets: %d\n", result.CalibrationRows)
	fmt.Printf("  Margin summaries: %d\n", result.MarginRows)
	fmt.Printf("  Best-price shares: %d\n", result.FrequencyRows)
	fmt.Printf("  KPIs: %d\n", result.KPIRows)
	if len(result.Warnings) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}

	// Quality checks after the rebuild
	if *runQC || *failOnQC {
		checker := quality.NewChecker(stores.bestStore, stores.mappingStore, stores.factStore, *missingHours, nil)
		report, err := checker.Check(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Quality check error: %v\n", err)
			os.Exit(1)
		}

		printReport(report)

		if *failOnQC && report.Status != quality.StatusPass {
			os.Exit(2)
		}
	}
}

// printReport writes the report in a stable one-metric-per-line format.
func printReport(r *quality.Report) {
	fmt.Println("=== Data Quality Checks ===")
	fmt.Printf("  Best-market events: %d\n", r.BestEventsTotal)
	if r.MappedPct != nil {
		fmt.Printf("  Mapped to results: %d (%.1f%%)\n", r.BestEventsMapped, *r.MappedPct*100)
	} else {
		fmt.Printf("  Mapped to results: %d (no events to judge)\n", r.BestEventsMapped)
	}
	fmt.Printf("  Missing results: %d total, %d older than %dh\n",
		r.MissingResultsTotal, r.MissingResultsAfterCutoff, r.MissingResultsHours)
	fmt.Printf("  Duplicate result claims: %d\n", r.DuplicateResultEvents)
	fmt.Printf("  Status: %s\n", r.Status)
	if len(r.Reasons) > 0 {
		fmt.Println("  Reasons:")
		for _, reason := range r.Reasons {
			fmt.Printf("    - %s\n", reason)
		}
	}
}

// envOr returns the env value or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// allStores holds every store the rebuild chain reads or writes.
type allStores struct {
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
	lock             storage.PipelineLock
	archive          storage.RunArchive
}

// createStores creates all required stores for the chosen backend.
func createStores(ctx context.Context, backend storage.Backend, postgresDSN, clickhouseDSN string) (*allStores, func(), error) {
	if backend == storage.BackendMemory {
		stores := &allStores{
			quoteStore:       memory.NewPriceQuoteStore(),
			resultStore:      memory.NewResultStore(),
			closingStore:     memory.NewClosingQuoteStore(),
			bestStore:        memory.NewBestQuoteStore(),
			mappingStore:     memory.NewMappingStore(),
			factStore:        memory.NewFactStore(),
			equityStore:      memory.NewEquityStore(),
			calibrationStore: memory.NewCalibrationStore(),
			marginStore:      memory.NewMarginStore(),
			frequencyStore:   memory.NewFrequencyStore(),
			kpiStore:         memory.NewKPIStore(),
			lock:             memory.NewPipelineLock(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	stores := &allStores{
		quoteStore:       pgstore.NewPriceQuoteStore(pool),
		resultStore:      pgstore.NewResultStore(pool),
		closingStore:     pgstore.NewClosingQuoteStore(pool),
		bestStore:        pgstore.NewBestQuoteStore(pool),
		mappingStore:     pgstore.NewMappingStore(pool),
		factStore:        pgstore.NewFactStore(pool),
		equityStore:      pgstore.NewEquityStore(pool),
		calibrationStore: pgstore.NewCalibrationStore(pool),
		marginStore:      pgstore.NewMarginStore(pool),
		frequencyStore:   pgstore.NewFrequencyStore(pool),
		kpiStore:         pgstore.NewKPIStore(pool),
		lock:             pgstore.NewPipelineLock(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse archive (optional)
	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("prepare clickhouse archive: %w", err)
		}
		stores.archive = chstore.NewRunArchive(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}
