// Package server implements the rate-limited mock orders API that the
// fetch pipeline runs against: deterministic fake orders, a per-IP request
// budget, and deliberately injected failures.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/plinphon/FaultyAPI/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the mock API configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// RateLimit is the per-IP request budget per second on /item.
	RateLimit int

	// Burst is the per-IP token bucket size.
	Burst int

	// FailureRate is the probability of an injected 500 on /item.
	FailureRate float64

	// MinLatency and MaxLatency bound the simulated upstream latency.
	MinLatency time.Duration
	MaxLatency time.Duration
}

// DefaultConfig returns the standard mock API behavior: 20 requests per
// second per IP, one injected failure in ten, 50-150ms latency.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8000",
		RateLimit:   20,
		Burst:       20,
		FailureRate: 0.10,
		MinLatency:  50 * time.Millisecond,
		MaxLatency:  150 * time.Millisecond,
	}
}

// Server is the mock orders API.
type Server struct {
	config   Config
	router   *mux.Router
	limiters *limiterPool
	logger   zerolog.Logger
	http     *http.Server
}

// New creates a new mock orders API server.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.RateLimit < 1 {
		return nil, fmt.Errorf("rate limit must be at least 1 (got %d)", cfg.RateLimit)
	}
	if cfg.Burst < 1 {
		return nil, fmt.Errorf("burst must be at least 1 (got %d)", cfg.Burst)
	}
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return nil, fmt.Errorf("failure rate must be between 0 and 1 (got %v)", cfg.FailureRate)
	}
	if cfg.MinLatency < 0 || cfg.MaxLatency < cfg.MinLatency {
		return nil, fmt.Errorf("latency range %v..%v is invalid", cfg.MinLatency, cfg.MaxLatency)
	}

	s := &Server{
		config:   cfg,
		limiters: newLimiterPool(cfg.RateLimit, cfg.Burst),
		logger:   logging.NewLogger("orders-api"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/item/{id}", s.rateLimited(s.handleGetItem)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Use(s.metricsMiddleware)
	s.router = r

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s, nil
}

// Router exposes the handler tree (for tests).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.config.Addr).
		Int("rate_limit", s.config.RateLimit).
		Float64("failure_rate", s.config.FailureRate).
		Msg("Mock orders API listening")

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down mock orders API")
	return s.http.Shutdown(ctx)
}

// errorBody is the JSON error shape on every non-200 response.
type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "mock-orders",
		"health":  "/healthz",
		"metrics": "/metrics",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleGetItem serves one deterministic fake order, after simulated
// latency and an occasional injected failure.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "item_id must be an integer"})
		return
	}
	if id < 1 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "item_id must be >= 1"})
		return
	}

	if !s.sleepLatency(r.Context()) {
		return // client went away
	}

	if s.config.FailureRate > 0 && rand.Float64() < s.config.FailureRate {
		apiInjectedFailuresTotal.Inc()
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "flaky upstream"})
		return
	}

	writeJSON(w, http.StatusOK, MakeOrder(id))
}

// sleepLatency simulates upstream I/O latency. It returns false when the
// request context ends first.
func (s *Server) sleepLatency(ctx context.Context) bool {
	d := s.config.MinLatency
	if span := s.config.MaxLatency - s.config.MinLatency; span > 0 {
		d += time.Duration(rand.Float64() * float64(span))
	}
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response body")
	}
}
