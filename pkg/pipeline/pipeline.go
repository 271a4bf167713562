package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plinphon/FaultyAPI/pkg/client"
	"github.com/plinphon/FaultyAPI/pkg/logging"
	"github.com/rs/zerolog"
)

// Config holds pipeline configuration.
type Config struct {
	// Workers is the number of fetch goroutines. The client's concurrency
	// gate still bounds actual in-flight requests.
	Workers int

	// BufferSize for the id queue and results channels.
	BufferSize int
}

// DefaultConfig returns safe defaults sized for the mock orders API.
func DefaultConfig() Config {
	return Config{
		Workers:    50,
		BufferSize: 256,
	}
}

// ItemFetcher is the interface the orders client implements for
// single-item fetching.
type ItemFetcher interface {
	FetchItem(ctx context.Context, itemID int) client.Result
}

// Runner fans a range of item ids out over a worker pool and aggregates
// the results as they finish.
type Runner struct {
	fetcher ItemFetcher
	config  Config
	logger  zerolog.Logger
}

// NewRunner creates a new pipeline runner.
func NewRunner(fetcher ItemFetcher, config Config) *Runner {
	if config.Workers <= 0 {
		config.Workers = 50
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 256
	}
	return &Runner{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("pipeline"),
	}
}

// FetchAll fetches items 1 through items and returns the run report.
// Rows land in completion order. On cancellation the ids not yet handed
// to a worker are skipped and the report covers only finished fetches.
func (r *Runner) FetchAll(ctx context.Context, items int) (*Report, error) {
	if items < 1 {
		return nil, fmt.Errorf("items must be at least 1 (got %d)", items)
	}

	start := time.Now()
	workers := r.config.Workers
	if workers > items {
		workers = items
	}

	r.logger.Info().
		Int("items", items).
		Int("workers", workers).
		Msg("Starting fetch run")

	idQueue := make(chan int, r.config.BufferSize)
	results := make(chan client.Result, r.config.BufferSize)

	go func() {
		defer close(idQueue)
		for id := 1; id <= items; id++ {
			select {
			case idQueue <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go r.worker(ctx, idQueue, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	agg := NewAggregator()
	for res := range results {
		agg.Add(res)
		if agg.Done()%50 == 0 {
			r.logger.Info().
				Int("done", agg.Done()).
				Int("total", items).
				Float64("progress_pct", float64(agg.Done())/float64(items)*100).
				Msg("Fetch progress")
		}
	}

	report := agg.Report(items, time.Since(start))
	r.logger.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("total", items).
		Dur("duration", report.Duration).
		Msg("Fetch run complete")

	return report, nil
}

// worker drains the id queue. Once ctx is done FetchItem returns aborted
// results immediately, so every dequeued id is still accounted for.
func (r *Runner) worker(ctx context.Context, idQueue <-chan int, results chan<- client.Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for id := range idQueue {
		results <- r.fetcher.FetchItem(ctx, id)
	}
}
