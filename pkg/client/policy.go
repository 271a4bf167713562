package client

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorClass represents a classification of failed attempts.
type ErrorClass string

const (
	// ErrorClassRateLimited represents 429 responses from the per-IP limiter.
	ErrorClassRateLimited ErrorClass = "rate_limited"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassClient represents non-retryable client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassTransport represents network and timeout errors.
	ErrorClassTransport ErrorClass = "transport"
)

// ActionKind is what the policy tells a worker to do after an attempt.
type ActionKind int

const (
	// Accept terminates the fetch with the response body as its result.
	Accept ActionKind = iota

	// Retry schedules another attempt after Action.Wait.
	Retry

	// Drop terminates the fetch permanently with Action.Reason.
	Drop
)

// String returns the lowercase name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case Accept:
		return "accept"
	case Retry:
		return "retry"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is the policy verdict for one completed attempt.
type Action struct {
	Kind   ActionKind
	Wait   time.Duration // retry delay, set when Kind is Retry
	Reason string        // drop reason, set when Kind is Drop
	Class  ErrorClass    // failure classification, empty on Accept
}

// Policy maps an attempt's status code or transport error onto the next
// step. Waits are fixed per class; a 429 additionally honors the server's
// Retry-After header.
type Policy struct {
	// RetryAfterFallback is the 429 wait when Retry-After is absent or
	// unparseable.
	RetryAfterFallback time.Duration

	// ServerErrorWait is the wait before retrying a 5xx response.
	ServerErrorWait time.Duration

	// TransportWait is the wait before retrying a network or timeout error.
	TransportWait time.Duration
}

// DefaultPolicy returns the standard one-second waits.
func DefaultPolicy() Policy {
	return Policy{
		RetryAfterFallback: 1 * time.Second,
		ServerErrorWait:    1 * time.Second,
		TransportWait:      1 * time.Second,
	}
}

// Decide classifies one attempt. err is the transport error, if any; status
// and header come from the response otherwise. Anything that is not a 200,
// a 429, or a 5xx is a permanent client error.
func (p Policy) Decide(status int, header http.Header, err error) Action {
	switch {
	case err != nil:
		return Action{Kind: Retry, Wait: p.TransportWait, Class: ErrorClassTransport}
	case status == http.StatusOK:
		return Action{Kind: Accept}
	case status == http.StatusTooManyRequests:
		return Action{Kind: Retry, Wait: p.retryAfter(header), Class: ErrorClassRateLimited}
	case status >= 500:
		return Action{Kind: Retry, Wait: p.ServerErrorWait, Class: ErrorClassServer}
	default:
		return Action{
			Kind:   Drop,
			Reason: fmt.Sprintf("client error %d", status),
			Class:  ErrorClassClient,
		}
	}
}

// retryAfter reads an integer-seconds Retry-After header. HTTP-date values
// and garbage fall back to the configured default.
func (p Policy) retryAfter(header http.Header) time.Duration {
	raw := strings.TrimSpace(header.Get("Retry-After"))
	if raw == "" {
		return p.RetryAfterFallback
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return p.RetryAfterFallback
	}
	return time.Duration(secs) * time.Second
}
