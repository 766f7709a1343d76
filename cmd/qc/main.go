// Package main provides the data quality check entry point. The checks only
// read; use the exit code to gate scheduled refreshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moneyline-lab/internal/quality"
	"moneyline-lab/internal/storage"
	"moneyline-lab/internal/storage/memory"
	"moneyline-lab/internal/storage/migrations"
	pgstore "moneyline-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	backendFlag := flag.String("backend", envOr("STORAGE_BACKEND", "postgres"), "Storage backend: postgres or memory")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	missingHours := flag.Int("missing-results-hours", quality.DefaultMissingResultsHours, "Hours after tip-off before a missing result counts as stale")
	failFlag := flag.Bool("fail", false, "Exit non-zero if QC fails thresholds")
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

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling checks...\n", sig)
		cancel()
	}()

	// Create stores (use interfaces)
	var bestStore storage.BestQuoteStore = memory.NewBestQuoteStore()
	var mappingStore storage.MappingStore = memory.NewMappingStore()
	var factStore storage.FactStore = memory.NewFactStore()

	if backend == storage.BackendPostgres {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Connect to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Apply postgres migrations: %v\n", err)
			os.Exit(1)
		}

		bestStore = pgstore.NewBestQuoteStore(pool)
		mappingStore = pgstore.NewMappingStore(pool)
		factStore = pgstore.NewFactStore(pool)
	}

	// Run checks
	checker := quality.NewChecker(bestStore, mappingStore, factStore, *missingHours, nil)
	report, err := checker.Check(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Quality check error: %v\n", err)
		os.Exit(1)
	}

	printReport(report)

	if *failFlag && report.Status != quality.StatusPass {
		os.Exit(2)
	}
}

// envOr returns the env value or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
