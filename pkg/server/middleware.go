package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// Prometheus metrics for the mock orders API.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_api_requests_total",
		Help: "Total API requests by route and status",
	}, []string{"path", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_api_request_duration_seconds",
		Help:    "API request duration in seconds by route",
		Buckets: []float64{0.01, 0.05, 0.1, 0.15, 0.25, 0.5, 1},
	}, []string{"path"})

	apiRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_api_rate_limited_total",
		Help: "Total requests rejected by the per-IP rate limit",
	})

	apiInjectedFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_api_injected_failures_total",
		Help: "Total deliberately injected 500 responses",
	})
)

// limiterPool hands out one token bucket per client IP.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newLimiterPool(rps, burst int) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// allow reports whether the client may proceed right now.
func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	lim, ok := p.limiters[key]
	if !ok {
		lim = rate.NewLimiter(p.rps, p.burst)
		p.limiters[key] = lim
	}
	p.mu.Unlock()

	return lim.Allow()
}

// clientIP extracts the host part of the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records request counts and durations per route and
// emits an access log line.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := routeTemplate(r)
		apiRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		apiRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// routeTemplate returns the mux route pattern so metric label cardinality
// stays independent of item ids.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// rateLimited rejects requests over the per-IP budget with a 429 and a
// Retry-After hint, mirroring what polite clients expect to parse.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiters.allow(ip) {
			apiRateLimitedTotal.Inc()
			s.logger.Debug().Str("ip", ip).Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
