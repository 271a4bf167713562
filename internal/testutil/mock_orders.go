// Package testutil provides a scriptable mock orders upstream for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines one canned upstream response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockOrdersAPI is a scriptable stand-in for the orders upstream. Scripts
// play one response per request to /item/{id}; the final response repeats
// once the script is exhausted. Unscripted ids answer 200 with a valid
// order body.
type MockOrdersAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	scripts  map[int][]MockResponse
	requests map[int]int
	total    int
}

// NewMockOrdersAPI starts the mock upstream.
func NewMockOrdersAPI() *MockOrdersAPI {
	m := &MockOrdersAPI{
		scripts:  make(map[int][]MockResponse),
		requests: make(map[int]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the upstream base URL.
func (m *MockOrdersAPI) URL() string {
	return m.server.URL
}

// Close shuts the upstream down.
func (m *MockOrdersAPI) Close() {
	m.server.Close()
}

// ScriptItem queues responses for one item id, consumed in order.
func (m *MockOrdersAPI) ScriptItem(itemID int, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[itemID] = responses
}

// RequestCount reports how many requests an item id has received.
func (m *MockOrdersAPI) RequestCount(itemID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[itemID]
}

// TotalRequests reports all item requests served so far.
func (m *MockOrdersAPI) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func (m *MockOrdersAPI) handle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/item/"))
	if err != nil {
		write(w, NotFoundResponse())
		return
	}

	m.mu.Lock()
	m.requests[id]++
	m.total++
	var resp MockResponse
	if script := m.scripts[id]; len(script) > 0 {
		resp = script[0]
		if len(script) > 1 {
			m.scripts[id] = script[1:]
		}
	} else {
		resp = OKResponse(id)
	}
	m.mu.Unlock()

	write(w, resp)
}

func write(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	w.Header().Set("Content-Type", "application/json")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// OrderBody returns a small valid order document for an item id.
func OrderBody(itemID int) string {
	return fmt.Sprintf(`{"order_id": %d, "account_id": %d, "company": "Test Co", `+
		`"status": "paid", "currency": "USD", "subtotal": 10.00, "tax": 0.70, `+
		`"total": 10.70, "created_at": "2026-01-01T00:00:00Z", "source": "mock"}`,
		itemID, itemID+10000)
}

// OKResponse is a 200 carrying a valid order body.
func OKResponse(itemID int) MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: OrderBody(itemID)}
}

// NotFoundResponse mirrors the upstream's 404 shape.
func NotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "item not found"}`,
	}
}

// RateLimitResponse mirrors the upstream's 429 shape with a Retry-After hint.
func RateLimitResponse(retryAfter string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"detail": "rate limit exceeded"}`,
		Headers:    map[string]string{"Retry-After": retryAfter},
	}
}

// ServerErrorResponse mirrors the upstream's injected 500 shape.
func ServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail": "flaky upstream"}`,
	}
}
