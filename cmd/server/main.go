// Package main provides the fuel market API server:
// - Snapshot API: market ranking, averages and trend charts per base
// - Quote API: idempotent user quote submission
// - WebSocket push: fresh snapshots to subscribed clients on new quotes
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/observability"
	"fuelmarket/internal/snapshot"
	"fuelmarket/internal/storage"
	chstore "fuelmarket/internal/storage/clickhouse"
	"fuelmarket/internal/storage/memory"
	"fuelmarket/internal/storage/migrations"
	pgstore "fuelmarket/internal/storage/postgres"
)

// Server wires the HTTP surface to the snapshot service and the
// websocket hub.
type Server struct {
	service *snapshot.Service
	hub     *Hub
	logger  *log.Logger
}

type serverStores struct {
	marketStore storage.MarketRecordStore
	quoteStore  storage.UserQuoteStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	addr := flag.String("addr", ":8080", "HTTP listen address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	hub := NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lshortfile))
	server := &Server{
		service: snapshot.NewService(stores.marketStore, stores.quoteStore, logger),
		hub:     hub,
		logger:  logger,
	}

	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the market and quote stores, running migrations
// for the database-backed mode.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*serverStores, func(), error) {
	if useMemory {
		stores := &serverStores{
			marketStore: memory.NewMarketRecordStore(),
			quoteStore:  memory.NewUserQuoteStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (user quotes)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (market price records)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &serverStores{
		marketStore: chstore.NewMarketRecordStore(chConn),
		quoteStore:  pgstore.NewUserQuoteStore(pool),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.DefaultMetrics.Handler())

	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/quotes", s.handleQuotes)
	mux.HandleFunc("/api/v1/dates", s.handleDates)
	mux.HandleFunc("/ws", s.handleWS)

	return mux
}

// handleSnapshot serves GET /api/v1/snapshot.
//
// Query parameters: base (required), ref (YYYY-MM-DD, defaults to
// today), user_id, distributors (comma-separated, omit for all, empty
// value for none), brands (comma-separated).
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "snapshot", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	base := r.URL.Query().Get("base")
	if base == "" {
		s.writeError(w, "snapshot", http.StatusBadRequest, "base is required")
		return
	}

	ref := time.Now()
	if refStr := r.URL.Query().Get("ref"); refStr != "" {
		parsed, err := domain.ParseDay(refStr)
		if err != nil {
			s.writeError(w, "snapshot", http.StatusBadRequest, "ref must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	filters := snapshot.Filters{
		ActiveDistributors: splitParam(r.URL.Query(), "distributors"),
		TrackedBrands:      splitParam(r.URL.Query(), "brands"),
	}

	state, err := s.service.Snapshot(r.Context(), r.URL.Query().Get("user_id"), base, ref, filters)
	if err != nil {
		s.logger.Printf("snapshot error: %v", err)
		s.writeError(w, "snapshot", http.StatusInternalServerError, "snapshot failed")
		return
	}

	s.writeJSON(w, "snapshot", http.StatusOK, snapshotResponse(state))
}

// QuoteRequest is the JSON body for POST /api/v1/quotes.
type QuoteRequest struct {
	UserID  string  `json:"user_id"`
	Base    string  `json:"base"`
	Product string  `json:"product"`
	Brand   string  `json:"brand"`
	Day     string  `json:"day"`
	Price   float64 `json:"price"`
}

// QuoteResponse is the JSON response for a stored quote.
type QuoteResponse struct {
	QuoteID string  `json:"quote_id"`
	UserID  string  `json:"user_id"`
	Base    string  `json:"base"`
	Product string  `json:"product"`
	Brand   string  `json:"brand"`
	Day     string  `json:"day"`
	Price   float64 `json:"price"`
}

// handleQuotes serves POST /api/v1/quotes. After the quote is stored,
// every websocket subscriber for the base receives a fresh snapshot.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "quotes", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "quotes", http.StatusBadRequest, "invalid JSON body")
		return
	}

	day := time.Now()
	if req.Day != "" {
		parsed, err := domain.ParseDay(req.Day)
		if err != nil {
			s.writeError(w, "quotes", http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	quote, err := s.service.SubmitQuote(r.Context(), snapshot.QuoteSubmission{
		UserID:  req.UserID,
		Base:    req.Base,
		Product: req.Product,
		Brand:   req.Brand,
		Day:     day,
		Price:   req.Price,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			s.writeError(w, "quotes", http.StatusBadRequest, "user_id, base, product, brand and a positive price are required")
			return
		}
		s.logger.Printf("quote error: %v", err)
		s.writeError(w, "quotes", http.StatusInternalServerError, "quote submission failed")
		return
	}

	go s.pushSnapshots(quote.Base)

	s.writeJSON(w, "quotes", http.StatusCreated, QuoteResponse{
		QuoteID: quote.QuoteID,
		UserID:  quote.UserID,
		Base:    quote.Base,
		Product: quote.Product,
		Brand:   quote.Brand,
		Day:     domain.FormatDay(quote.Day),
		Price:   quote.Price,
	})
}

// handleDates serves GET /api/v1/dates: the days with market data for
// a base, ascending.
func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "dates", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	base := r.URL.Query().Get("base")
	if base == "" {
		s.writeError(w, "dates", http.StatusBadRequest, "base is required")
		return
	}

	days, err := s.service.AvailableDays(r.Context(), base, splitParam(r.URL.Query(), "distributors"))
	if err != nil {
		s.logger.Printf("dates error: %v", err)
		s.writeError(w, "dates", http.StatusInternalServerError, "listing dates failed")
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, domain.FormatDay(d))
	}
	s.writeJSON(w, "dates", http.StatusOK, map[string][]string{"dates": out})
}

// pushSnapshots recomputes and broadcasts the snapshot for every
// websocket subscription on the given base.
func (s *Server) pushSnapshots(base string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sub := range s.hub.Subscriptions(base) {
		state, err := s.service.Snapshot(ctx, sub.UserID, base, sub.Ref, sub.Filters)
		if err != nil {
			s.logger.Printf("push snapshot error for base %s: %v", base, err)
			continue
		}
		s.hub.Send(sub, snapshotResponse(state))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, body any) {
	observability.RecordHTTPRequest(endpoint, fmt.Sprintf("%d", status))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, msg string) {
	s.writeJSON(w, endpoint, status, map[string]string{"error": msg})
}

// splitParam splits a comma-separated query parameter. A missing
// parameter returns nil; a present-but-empty one returns an empty
// slice, which filters mean "none selected".
func splitParam(q map[string][]string, key string) []string {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return nil
	}
	raw := values[0]
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
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
