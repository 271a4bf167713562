// Package client fetches order documents from the orders API with bounded
// concurrency, rate-limited request admission, and status-aware retries.
package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/plinphon/FaultyAPI/pkg/gate"
	"github.com/plinphon/FaultyAPI/pkg/logging"
	"github.com/plinphon/FaultyAPI/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for fetch operations.
var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetch_requests_total",
		Help: "Total upstream request attempts by response status",
	}, []string{"status"})

	fetchRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orders_fetch_request_duration_seconds",
		Help:    "Upstream request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetch_errors_total",
		Help: "Total failed attempts by error class",
	}, []string{"class"})

	fetchRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetch_retries_total",
		Help: "Total retry waits entered by error class",
	}, []string{"class"})

	fetchRetryWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_fetch_retry_wait_seconds",
		Help:    "Wait before a retry attempt by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	}, []string{"class"})

	fetchRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetch_retry_exhausted_total",
		Help: "Total fetches that spent their attempt budget by error class",
	}, []string{"class"})

	fetchItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetch_items_total",
		Help: "Total finished fetches by outcome",
	}, []string{"outcome"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root of the orders API, e.g. "http://127.0.0.1:8000".
	BaseURL string

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// MaxRPS caps request starts per second across all workers.
	MaxRPS int

	// MaxConcurrent caps in-flight requests across all workers.
	MaxConcurrent int

	// MaxAttempts is the total request budget per item, first try included.
	MaxAttempts int

	// RequestTimeout bounds a single round trip.
	RequestTimeout time.Duration

	// Policy decides what happens after each attempt.
	Policy Policy
}

// DefaultConfig returns a configuration that stays under the mock API's
// per-IP budget of 20 requests per second.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      "orders-fetch/1.0",
		MaxRPS:         18,
		MaxConcurrent:  50,
		MaxAttempts:    3,
		RequestTimeout: 5 * time.Second,
		Policy:         DefaultPolicy(),
	}
}

// Client fetches orders. It is safe for concurrent use; the rate limiter
// and concurrency gate are shared across every FetchItem call.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	gate       *gate.Gate
	config     Config
	logger     zerolog.Logger
}

// New creates a new orders client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1 (got %d)", cfg.MaxAttempts)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive (got %v)", cfg.RequestTimeout)
	}

	limiter, err := ratelimit.New(cfg.MaxRPS)
	if err != nil {
		return nil, err
	}
	g, err := gate.New(cfg.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: limiter,
		gate:    g,
		config:  cfg,
		logger:  logging.NewLogger("fetch-client"),
	}, nil
}

// InFlight reports how many requests the client currently has in flight.
func (c *Client) InFlight() int {
	return c.gate.InFlight()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
