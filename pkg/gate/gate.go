// Package gate bounds how many upstream requests are in flight at once.
package gate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate caps concurrent request attempts at a fixed limit. A slot is held
// from Acquire until the returned release function runs; retry waits must
// happen with the slot already released.
type Gate struct {
	sem      *semaphore.Weighted
	limit    int
	inFlight atomic.Int64
}

// New creates a Gate admitting at most limit concurrent holders.
func New(limit int) (*Gate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("concurrency limit must be positive, got %d", limit)
	}
	return &Gate{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}, nil
}

// Acquire blocks until a slot opens or ctx is done. The returned release
// function frees the slot exactly once; further calls are no-ops.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire concurrency slot: %w", err)
	}
	g.inFlight.Add(1)

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.inFlight.Add(-1)
			g.sem.Release(1)
		})
	}
	return release, nil
}

// InFlight reports how many slots are currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Limit returns the configured slot count.
func (g *Gate) Limit() int {
	return g.limit
}
