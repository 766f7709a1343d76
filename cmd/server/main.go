// Package main provides the unified service that runs all components together:
// - Ingestion (scheduled): odds snapshots and scoreboard result pulls
// - Pipeline (scheduled): closing lines → best market → facts → analytics
// - Quality (scheduled): read-only threshold checks over the joined tables
// plus an HTTP surface for job triggers and dashboard reads.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/espn"
	"moneyline-lab/internal/ingestion"
	"moneyline-lab/internal/observability"
	"moneyline-lab/internal/oddsapi"
	"moneyline-lab/internal/orchestrator"
	"moneyline-lab/internal/quality"
	"moneyline-lab/internal/storage"
	chstore "moneyline-lab/internal/storage/clickhouse"
	"moneyline-lab/internal/storage/memory"
	"moneyline-lab/internal/storage/migrations"
	pgstore "moneyline-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	backend          storage.Backend
	stake            float64
	calibrationStep  float64
	verbose          bool
	snapshotInterval time.Duration
	resultsInterval  time.Duration
	pipelineInterval time.Duration
	qcInterval       time.Duration

	// Stores
	stores *allStores

	// Components
	runner  *ingestion.Runner
	checker *quality.Checker
	logger  *log.Logger

	// State
	mu              sync.Mutex
	started         time.Time
	lastSnapshot    time.Time
	lastResultsPull time.Time
	lastPipelineRun time.Time
	lastQCRun       time.Time
	lastQCStatus    string
	pipelineRunning bool

	// Stats
	snapshots    int
	resultsPulls int
	pipelineRuns int
	qcRuns       int
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	apiKey := flag.String("odds-api-key", os.Getenv("ODDS_API_KEY"), "The Odds API key")
	sport := flag.String("sport", ingestion.DefaultSportKey, "Sport key for the odds feed")
	league := flag.String("league", espn.DefaultLeague, "Scoreboard league")
	regions := flag.String("regions", oddsapi.DefaultRegions, "Bookmaker regions for the odds feed")
	bookmakers := flag.String("bookmakers", "", "Comma-separated bookmaker keys (optional book filter)")
	backendFlag := flag.String("backend", envOr("STORAGE_BACKEND", "postgres"), "Storage backend: postgres or memory")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for run archiving (optional)")
	stake := flag.Float64("stake", 1.0, "Per-game wager for the strategy simulation")
	calibrationStep := flag.Float64("calibration-step", 0.05, "Calibration bucket width")
	missingHours := flag.Int("missing-results-hours", quality.DefaultMissingResultsHours, "Hours after tip-off before a missing result counts as stale")
	snapshotInterval := flag.Duration("snapshot-interval", 30*time.Minute, "Odds snapshot interval")
	resultsInterval := flag.Duration("results-interval", 1*time.Hour, "Results pull interval")
	pipelineInterval := flag.Duration("pipeline-interval", 1*time.Hour, "Pipeline run interval")
	qcInterval := flag.Duration("qc-interval", 6*time.Hour, "Quality check interval")
	httpAddr := flag.String("http-addr", ":8080", "HTTP address for health/metrics/jobs/reads")
	verbose := flag.Bool("verbose", false, "Verbose pipeline output")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *apiKey == "" {
		logger.Fatal("--odds-api-key is required (or set ODDS_API_KEY)")
	}
	backend, err := storage.ParseBackend(*backendFlag)
	if err != nil {
		logger.Fatalf("Invalid --backend: %v", err)
	}
	if backend == storage.BackendPostgres && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required for the postgres backend (use --backend=memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, backend, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create ingestion runner and quality checker
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Odds:        oddsapi.NewClient(*apiKey, oddsapi.WithRegions(*regions)),
		Scores:      espn.NewClient(espn.WithLeague(*league)),
		QuoteStore:  stores.quoteStore,
		ResultStore: stores.resultStore,
		SportKey:    *sport,
		Bookmakers:  splitList(*bookmakers),
		Logger:      log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile),
	})
	checker := quality.NewChecker(stores.bestStore, stores.mappingStore, stores.factStore, *missingHours, nil)

	// Create server
	server := &Server{
		backend:          backend,
		stake:            *stake,
		calibrationStep:  *calibrationStep,
		verbose:          *verbose,
		snapshotInterval: *snapshotInterval,
		resultsInterval:  *resultsInterval,
		pipelineInterval: *pipelineInterval,
		qcInterval:       *qcInterval,
		stores:           stores,
		runner:           runner,
		checker:          checker,
		logger:           logger,
		started:          time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

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

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
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

// allStores holds every store the service reads or writes.
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

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	// Create error channel for goroutines
	errCh := make(chan error, 3)

	// Start ingestion in background
	go func() {
		err := s.runIngestion(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	// Start pipeline scheduler in background
	go func() {
		err := s.runPipelineScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("pipeline scheduler: %w", err)
		}
	}()

	// Start quality check scheduler in background
	go func() {
		err := s.runQCScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("qc scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngestion pulls odds and results on independent tickers.
func (s *Server) runIngestion(ctx context.Context) error {
	s.logger.Printf("Starting ingestion (snapshots every %v, results every %v)...", s.snapshotInterval, s.resultsInterval)

	// Run both immediately on start
	s.takeSnapshot(ctx)
	s.pullResults(ctx, nil)

	snapshotTicker := time.NewTicker(s.snapshotInterval)
	defer snapshotTicker.Stop()
	resultsTicker := time.NewTicker(s.resultsInterval)
	defer resultsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-snapshotTicker.C:
			s.takeSnapshot(ctx)
		case <-resultsTicker.C:
			s.pullResults(ctx, nil)
		}
	}
}

// takeSnapshot takes one odds snapshot.
func (s *Server) takeSnapshot(ctx context.Context) (int, *oddsapi.Quota, error) {
	inserted, quota, err := s.runner.SnapshotOdds(ctx)
	if err != nil {
		observability.RecordFetchError("odds")
		s.logger.Printf("Snapshot error: %v", err)
		return 0, nil, err
	}
	observability.RecordSnapshot(inserted, quota.Remaining)

	s.mu.Lock()
	s.lastSnapshot = time.Now()
	s.snapshots++
	s.mu.Unlock()

	return inserted, quota, nil
}

// pullResults pulls scoreboard results. A nil dates slice pulls yesterday
// and today.
func (s *Server) pullResults(ctx context.Context, dates []string) (int, error) {
	if len(dates) == 0 {
		dates = ingestion.DateRange(time.Now(), 2)
	}

	n, err := s.runner.PullResults(ctx, dates)
	if err != nil {
		observability.RecordFetchError("scores")
		s.logger.Printf("Results pull error: %v", err)
		return n, err
	}
	observability.RecordResultsPull(n)

	s.mu.Lock()
	s.lastResultsPull = time.Now()
	s.resultsPulls++
	s.mu.Unlock()

	return n, nil
}

// runPipelineScheduler runs the rebuild pipeline on schedule.
func (s *Server) runPipelineScheduler(ctx context.Context) error {
	s.logger.Printf("Starting pipeline scheduler (interval: %v)...", s.pipelineInterval)

	// Run immediately on start
	s.runPipeline(ctx)

	ticker := time.NewTicker(s.pipelineInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline executes one full rebuild run.
func (s *Server) runPipeline(ctx context.Context) (*orchestrator.RunResult, error) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		s.logger.Println("Pipeline already running, skipping...")
		return nil, storage.ErrPipelineBusy
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pipelineRunning = false
		s.lastPipelineRun = time.Now()
		s.pipelineRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running pipeline...")
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		QuoteStore:       s.stores.quoteStore,
		ResultStore:      s.stores.resultStore,
		ClosingStore:     s.stores.closingStore,
		BestStore:        s.stores.bestStore,
		MappingStore:     s.stores.mappingStore,
		FactStore:        s.stores.factStore,
		EquityStore:      s.stores.equityStore,
		CalibrationStore: s.stores.calibrationStore,
		MarginStore:      s.stores.marginStore,
		FrequencyStore:   s.stores.frequencyStore,
		KPIStore:         s.stores.kpiStore,
		Lock:             s.stores.lock,
		Archive:          s.stores.archive,
		Stake:            s.stake,
		CalibrationStep:  s.calibrationStep,
		Verbose:          s.verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Printf("Pipeline error: %v", err)
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return nil, err
	}

	s.logger.Printf("Pipeline completed in %v: %d facts, %d equity points, %d KPIs",
		time.Since(start), result.FactRows, result.EquityRows, result.KPIRows)

	observability.RecordPipelineRun("success", time.Since(start).Seconds())
	observability.RecordRowsRebuilt("closing_quotes", result.ClosingRows)
	observability.RecordRowsRebuilt("best_quotes", result.BestMarketRows)
	observability.RecordRowsRebuilt("game_mappings", result.MappingRows)
	observability.RecordRowsRebuilt("game_facts", result.FactRows)
	observability.RecordRowsRebuilt("equity_points", result.EquityRows)
	observability.RecordRowsRebuilt("calibration_buckets", result.CalibrationRows)
	observability.RecordRowsRebuilt("margin_summaries", result.MarginRows)
	observability.RecordRowsRebuilt("best_price_shares", result.FrequencyRows)
	observability.RecordRowsRebuilt("kpi_entries", result.KPIRows)

	for _, w := range result.Warnings {
		s.logger.Printf("Pipeline warning: %s", w)
	}

	return result, nil
}

// runQCScheduler runs quality checks on schedule.
func (s *Server) runQCScheduler(ctx context.Context) error {
	s.logger.Printf("Starting quality check scheduler (interval: %v)...", s.qcInterval)

	// Run immediately on start; the checks are read-only and cheap.
	s.runQC(ctx)

	ticker := time.NewTicker(s.qcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runQC(ctx)
		}
	}
}

// runQC executes one quality check pass.
func (s *Server) runQC(ctx context.Context) (*quality.Report, error) {
	report, err := s.checker.Check(ctx)
	if err != nil {
		s.logger.Printf("Quality check error: %v", err)
		return nil, err
	}
	observability.RecordQualityCheck(report.Status, report.MappedPct, report.MissingResultsTotal)

	s.mu.Lock()
	s.lastQCRun = time.Now()
	s.lastQCStatus = report.Status
	s.qcRuns++
	s.mu.Unlock()

	if report.Status != quality.StatusPass {
		s.logger.Printf("Quality check FAILED: %v", report.Reasons)
	}

	return report, nil
}

// startHTTPServer starts the HTTP server for health/metrics/jobs/reads.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// Job triggers
	mux.HandleFunc("/jobs/odds-snapshot", s.handleSnapshotJob)
	mux.HandleFunc("/jobs/results-pull", s.handleResultsJob)
	mux.HandleFunc("/jobs/rebuild", s.handleRebuildJob)

	// Dashboard reads
	mux.HandleFunc("/kpis", s.handleKPIs)
	mux.HandleFunc("/quality", s.handleQuality)
	mux.HandleFunc("/facts/", s.handleFact)
	mux.HandleFunc("/equity", s.handleEquity)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// writeJSON writes v as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("Encode response: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Backend         string    `json:"backend"`
	Uptime          string    `json:"uptime"`
	LastSnapshot    time.Time `json:"last_snapshot,omitempty"`
	LastResultsPull time.Time `json:"last_results_pull,omitempty"`
	LastPipelineRun time.Time `json:"last_pipeline_run,omitempty"`
	LastQCRun       time.Time `json:"last_qc_run,omitempty"`
	LastQCStatus    string    `json:"last_qc_status,omitempty"`
	Snapshots       int       `json:"snapshots"`
	ResultsPulls    int       `json:"results_pulls"`
	PipelineRuns    int       `json:"pipeline_runs"`
	QCRuns          int       `json:"qc_runs"`
	PipelineRunning bool      `json:"pipeline_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:          "running",
		Backend:         s.backend.String(),
		Uptime:          time.Since(s.started).String(),
		LastSnapshot:    s.lastSnapshot,
		LastResultsPull: s.lastResultsPull,
		LastPipelineRun: s.lastPipelineRun,
		LastQCRun:       s.lastQCRun,
		LastQCStatus:    s.lastQCStatus,
		Snapshots:       s.snapshots,
		ResultsPulls:    s.resultsPulls,
		PipelineRuns:    s.pipelineRuns,
		QCRuns:          s.qcRuns,
		PipelineRunning: s.pipelineRunning,
	}
	s.mu.Unlock()

	s.writeJSON(w, resp)
}

// handleSnapshotJob triggers one odds snapshot.
func (s *Server) handleSnapshotJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	inserted, quota, err := s.takeSnapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"inserted":        inserted,
		"quota_remaining": quota.Remaining,
	})
}

// ResultsPullRequest is the JSON body for /jobs/results-pull. Dates are
// scoreboard days in YYYYMMDD form; empty means yesterday and today.
type ResultsPullRequest struct {
	Dates []string `json:"dates"`
}

// handleResultsJob triggers a results pull.
func (s *Server) handleResultsJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ResultsPullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	n, err := s.pullResults(r.Context(), req.Dates)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, map[string]interface{}{"rows": n})
}

// RebuildResponse is the JSON response for /jobs/rebuild.
type RebuildResponse struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	ClosingRows     int       `json:"closing_rows"`
	BestMarketRows  int       `json:"best_market_rows"`
	MappingRows     int       `json:"mapping_rows"`
	FactRows        int       `json:"fact_rows"`
	EquityRows      int       `json:"equity_rows"`
	CalibrationRows int       `json:"calibration_rows"`
	MarginRows      int       `json:"margin_rows"`
	FrequencyRows   int       `json:"frequency_rows"`
	KPIRows         int       `json:"kpi_rows"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// handleRebuildJob triggers one full pipeline run.
func (s *Server) handleRebuildJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.runPipeline(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrPipelineBusy) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, RebuildResponse{
		RunID:           result.RunID,
		StartedAt:       result.StartedAt,
		FinishedAt:      result.FinishedAt,
		ClosingRows:     result.ClosingRows,
		BestMarketRows:  result.BestMarketRows,
		MappingRows:     result.MappingRows,
		FactRows:        result.FactRows,
		EquityRows:      result.EquityRows,
		CalibrationRows: result.CalibrationRows,
		MarginRows:      result.MarginRows,
		FrequencyRows:   result.FrequencyRows,
		KPIRows:         result.KPIRows,
		Warnings:        result.Warnings,
	})
}

// handleKPIs returns the dashboard rollup as one name→value object.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.stores.kpiStore.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	kpis := make(map[string]string, len(entries))
	for _, e := range entries {
		kpis[e.Name] = e.Value
	}
	s.writeJSON(w, kpis)
}

// QualityResponse is the JSON response for /quality.
type QualityResponse struct {
	BestEventsTotal           int      `json:"best_events_total"`
	BestEventsMapped          int      `json:"best_events_mapped"`
	MappedPct                 *float64 `json:"mapped_pct"`
	MissingResultsTotal       int      `json:"missing_results_total"`
	MissingResultsAfterCutoff int      `json:"missing_results_after_cutoff"`
	MissingResultsHours       int      `json:"missing_results_hours"`
	DuplicateResultEvents     int      `json:"duplicate_result_events"`
	Status                    string   `json:"status"`
	Reasons                   []string `json:"reasons,omitempty"`
}

// handleQuality runs the checks and returns the report.
func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	report, err := s.runQC(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, QualityResponse{
		BestEventsTotal:           report.BestEventsTotal,
		BestEventsMapped:          report.BestEventsMapped,
		MappedPct:                 report.MappedPct,
		MissingResultsTotal:       report.MissingResultsTotal,
		MissingResultsAfterCutoff: report.MissingResultsAfterCutoff,
		MissingResultsHours:       report.MissingResultsHours,
		DuplicateResultEvents:     report.DuplicateResultEvents,
		Status:                    report.Status,
		Reasons:                   report.Reasons,
	})
}

// FactResponse is the JSON response for /facts/{event_id}.
type FactResponse struct {
	EventID       string    `json:"event_id"`
	ResultEventID string    `json:"result_event_id"`
	CommenceAt    time.Time `json:"commence_time"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	BestHomePrice *int      `json:"best_home_price_american"`
	BestAwayPrice *int      `json:"best_away_price_american"`
	HomeScore     *int      `json:"home_score"`
	AwayScore     *int      `json:"away_score"`
	Winner        string    `json:"winner,omitempty"`
	FavoriteSide  string    `json:"favorite_side"`
	UnderdogSide  string    `json:"underdog_side"`
}

// handleFact returns one joined game fact by priced-event id.
func (s *Server) handleFact(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimPrefix(r.URL.Path, "/facts/")
	if eventID == "" {
		http.Error(w, "event id required", http.StatusBadRequest)
		return
	}

	fact, err := s.stores.factStore.GetByEventID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, FactResponse{
		EventID:       fact.EventID,
		ResultEventID: fact.ResultEventID,
		CommenceAt:    fact.CommenceAt,
		HomeTeam:      fact.HomeTeam,
		AwayTeam:      fact.AwayTeam,
		BestHomePrice: fact.BestHomePrice,
		BestAwayPrice: fact.BestAwayPrice,
		HomeScore:     fact.HomeScore,
		AwayScore:     fact.AwayScore,
		Winner:        fact.Winner.String(),
		FavoriteSide:  fact.FavoriteSide.String(),
		UnderdogSide:  fact.UnderdogSide.String(),
	})
}

// EquityPointResponse is one row of the /equity response.
type EquityPointResponse struct {
	Strategy   string    `json:"strategy"`
	GameIndex  int       `json:"game_index"`
	EventID    string    `json:"event_id"`
	CommenceAt time.Time `json:"commence_time"`
	Stake      float64   `json:"stake"`
	Price      int       `json:"price_american"`
	PickedSide string    `json:"picked_side"`
	Winner     string    `json:"winner"`
	BetProfit  float64   `json:"bet_profit"`
	CumProfit  float64   `json:"cum_profit"`
	CumROI     float64   `json:"cum_roi"`
}

// handleEquity returns one strategy's equity curve.
func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	strategy := domain.Strategy(r.URL.Query().Get("strategy"))
	if !strategy.IsValid() {
		http.Error(w, "strategy must be one of: favorite, underdog, home, away", http.StatusBadRequest)
		return
	}

	points, err := s.stores.equityStore.ListByStrategy(r.Context(), strategy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	curve := make([]EquityPointResponse, 0, len(points))
	for _, p := range points {
		curve = append(curve, EquityPointResponse{
			Strategy:   p.Strategy.String(),
			GameIndex:  p.GameIndex,
			EventID:    p.EventID,
			CommenceAt: p.CommenceAt,
			Stake:      p.Stake,
			Price:      p.Price,
			PickedSide: p.PickedSide.String(),
			Winner:     p.Winner.String(),
			BetProfit:  p.BetProfit,
			CumProfit:  p.CumProfit,
			CumROI:     p.CumROI,
		})
	}
	s.writeJSON(w, curve)
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
