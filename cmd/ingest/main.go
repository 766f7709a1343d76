package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"moneyline-lab/internal/espn"
	"moneyline-lab/internal/ingestion"
	"moneyline-lab/internal/observability"
	"moneyline-lab/internal/oddsapi"
	"moneyline-lab/internal/storage"
	"moneyline-lab/internal/storage/memory"
	"moneyline-lab/internal/storage/migrations"
	pgstore "moneyline-lab/internal/storage/postgres"
)

const scoreboardDateLayout = "20060102"

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	mode := flag.String("mode", "snapshot", "Ingestion mode: snapshot, results, or loop")
	apiKey := flag.String("odds-api-key", os.Getenv("ODDS_API_KEY"), "The Odds API key")
	sport := flag.String("sport", ingestion.DefaultSportKey, "Sport key for the odds feed")
	league := flag.String("league", espn.DefaultLeague, "Scoreboard league")
	regions := flag.String("regions", oddsapi.DefaultRegions, "Bookmaker regions for the odds feed")
	bookmakers := flag.String("bookmakers", "", "Comma-separated bookmaker keys (optional book filter)")
	backendFlag := flag.String("backend", envOr("STORAGE_BACKEND", "postgres"), "Storage backend: postgres or memory")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	dates := flag.String("dates", "", "Comma-separated scoreboard dates YYYYMMDD (results mode)")
	days := flag.Int("days", 2, "Days to pull ending at -end-date, inclusive (results mode)")
	endDate := flag.String("end-date", "", "End date YYYYMMDD, defaults to today (results mode)")
	snapshotInterval := flag.Duration("snapshot-interval", 30*time.Minute, "Odds snapshot interval (loop mode)")
	resultsInterval := flag.Duration("results-interval", 1*time.Hour, "Results pull interval (loop mode)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	backend, err := storage.ParseBackend(*backendFlag)
	if err != nil {
		logger.Fatalf("Invalid --backend: %v", err)
	}
	if backend == storage.BackendPostgres && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required for the postgres backend (use --backend=memory for in-memory storage)")
	}
	if (*mode == "snapshot" || *mode == "loop") && *apiKey == "" {
		logger.Fatal("--odds-api-key is required (or set ODDS_API_KEY)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Create stores (use interfaces)
	var quoteStore storage.PriceQuoteStore = memory.NewPriceQuoteStore()
	var resultStore storage.ResultStore = memory.NewResultStore()

	if backend == storage.BackendPostgres {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Apply postgres migrations: %v", err)
		}

		quoteStore = pgstore.NewPriceQuoteStore(pool)
		resultStore = pgstore.NewResultStore(pool)
	}

	// Create runner
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Odds:        oddsapi.NewClient(*apiKey, oddsapi.WithRegions(*regions)),
		Scores:      espn.NewClient(espn.WithLeague(*league)),
		QuoteStore:  quoteStore,
		ResultStore: resultStore,
		SportKey:    *sport,
		Bookmakers:  splitList(*bookmakers),
		Logger:      logger,
	})

	// Run based on mode
	switch *mode {
	case "snapshot":
		err = runSnapshot(ctx, runner)
	case "results":
		err = runResults(ctx, logger, runner, *dates, *days, *endDate)
	case "loop":
		err = runLoop(ctx, logger, runner, *snapshotInterval, *resultsInterval)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the env value or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated flag into trimmed non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}
	return list
}

// resolveDates resolves the scoreboard dates for a results pull.
func resolveDates(dates string, days int, endDate string) ([]string, error) {
	if list := splitList(dates); len(list) > 0 {
		return list, nil
	}

	end := time.Now()
	if endDate != "" {
		var err error
		end, err = time.Parse(scoreboardDateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("parse end-date: %w", err)
		}
	}
	return ingestion.DateRange(end, days), nil
}

// runSnapshot takes one odds snapshot.
func runSnapshot(ctx context.Context, runner *ingestion.Runner) error {
	inserted, quota, err := runner.SnapshotOdds(ctx)
	if err != nil {
		observability.RecordFetchError("odds")
		return err
	}
	observability.RecordSnapshot(inserted, quota.Remaining)
	return nil
}

// runResults pulls game results for the resolved dates.
func runResults(ctx context.Context, logger *log.Logger, runner *ingestion.Runner, dates string, days int, endDate string) error {
	list, err := resolveDates(dates, days, endDate)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no scoreboard dates to pull")
	}

	n, err := runner.PullResults(ctx, list)
	if err != nil {
		observability.RecordFetchError("scores")
		return err
	}
	observability.RecordResultsPull(n)

	logger.Printf("Results pull complete: %d rows across %d dates", n, len(list))
	return nil
}

// runLoop runs continuous ingestion: snapshots and results on independent
// tickers until the context is cancelled.
func runLoop(ctx context.Context, logger *log.Logger, runner *ingestion.Runner, snapshotInterval, resultsInterval time.Duration) error {
	logger.Printf("Starting ingestion loop (snapshots every %v, results every %v)...", snapshotInterval, resultsInterval)

	// Run both immediately on start
	if err := runSnapshot(ctx, runner); err != nil {
		logger.Printf("Snapshot error: %v", err)
	}
	pullRecent := func() {
		dates := ingestion.DateRange(time.Now(), 2)
		n, err := runner.PullResults(ctx, dates)
		if err != nil {
			observability.RecordFetchError("scores")
			logger.Printf("Results pull error: %v", err)
			return
		}
		observability.RecordResultsPull(n)
	}
	pullRecent()

	snapshotTicker := time.NewTicker(snapshotInterval)
	defer snapshotTicker.Stop()
	resultsTicker := time.NewTicker(resultsInterval)
	defer resultsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-snapshotTicker.C:
			if err := runSnapshot(ctx, runner); err != nil {
				logger.Printf("Snapshot error: %v", err)
			}
		case <-resultsTicker.C:
			pullRecent()
		}
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
