// Package ratelimit bounds how fast the fetch pipeline starts upstream
// requests, keeping it under the mock API's per-IP budget.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter admits at most maxRPS request starts per second. Burst is pinned
// to one token, so admissions are spaced 1/maxRPS apart and a rolling
// one-second window holds at most maxRPS starts (plus one carried token
// when a waiter is rescheduled late).
type Limiter struct {
	limiter *rate.Limiter
	maxRPS  int
}

// New creates a Limiter admitting maxRPS request starts per second.
func New(maxRPS int) (*Limiter, error) {
	if maxRPS <= 0 {
		return nil, fmt.Errorf("max rps must be positive, got %d", maxRPS)
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(maxRPS), 1),
		maxRPS:  maxRPS,
	}, nil
}

// Acquire blocks until the next admission slot opens or ctx is done.
// Every upstream request attempt, including retries, must pass through
// Acquire before dialing.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// MaxRPS returns the configured admission budget.
func (l *Limiter) MaxRPS() int {
	return l.maxRPS
}
