// Package metrics provides the centralized Prometheus metrics registry for
// the orders fetch pipeline and the mock orders API. All metrics are defined
// in their respective packages (client, server) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by both binaries.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Fetch Metrics (pkg/client):
//   - orders_fetch_requests_total{status} (Counter): Completed requests by HTTP status
//   - orders_fetch_request_duration_seconds (Histogram): Wall time per request attempt
//   - orders_fetch_errors_total{class} (Counter): Failed attempts by error class (rate_limited, server, client, transport)
//   - orders_fetch_retries_total{class} (Counter): Scheduled retries by error class
//   - orders_fetch_retry_wait_seconds{class} (Histogram): Wait before each retry by error class
//   - orders_fetch_retry_exhausted_total{class} (Counter): Items that spent the whole attempt budget
//   - orders_fetch_items_total{outcome} (Counter): Items finished by outcome (succeeded, failed)
//
// Mock API Metrics (pkg/server):
//   - orders_api_requests_total{path, status} (Counter): Requests by route template and HTTP status
//   - orders_api_request_duration_seconds{path} (Histogram): Handler duration by route template
//   - orders_api_rate_limited_total (Counter): Requests rejected with 429
//   - orders_api_injected_failures_total (Counter): Deliberate 500 responses
//
// Example Prometheus Queries:
//
//   # Retry Rate by Error Class
//   rate(orders_fetch_retries_total[5m])
//
//   # Item Failure Ratio
//   sum(rate(orders_fetch_items_total{outcome="failed"}[5m])) /
//   sum(rate(orders_fetch_items_total[5m]))
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(orders_fetch_request_duration_seconds_bucket[5m]))
//
//   # Upstream 429 Pressure
//   rate(orders_api_rate_limited_total[5m])
//
//   # Injected Failure Share
//   rate(orders_api_injected_failures_total[5m]) /
//   rate(orders_api_requests_total{path="/item/{id}"}[5m])
