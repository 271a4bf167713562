// Package pipeline drives the concurrent fetch of an item range and
// aggregates results in completion order.
package pipeline

import (
	"time"

	"github.com/plinphon/FaultyAPI/pkg/client"
	"github.com/plinphon/FaultyAPI/pkg/orders"
)

// Failure is one item that ended without an order.
type Failure struct {
	ItemID   int
	Attempts int
	Reason   string
}

// Report is the outcome of a pipeline run. Records appear in the order
// fetches finished, not in item id order.
type Report struct {
	Records   []orders.Record
	Failures  []Failure
	Requested int
	Duration  time.Duration
}

// Succeeded returns the number of fetched orders.
func (r *Report) Succeeded() int {
	return len(r.Records)
}

// Failed returns the number of items that ended without an order.
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Aggregator collects finished fetches. It is owned by the single collector
// goroutine and does no locking of its own.
type Aggregator struct {
	records  []orders.Record
	failures []Failure
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends one finished fetch in arrival order.
func (a *Aggregator) Add(res client.Result) {
	if res.State == client.StateSucceeded {
		a.records = append(a.records, res.Record)
		return
	}
	reason := "unknown failure"
	if res.Err != nil {
		reason = res.Err.Error()
	}
	a.failures = append(a.failures, Failure{
		ItemID:   res.ItemID,
		Attempts: res.Attempts,
		Reason:   reason,
	})
}

// Done returns how many fetches have been collected so far.
func (a *Aggregator) Done() int {
	return len(a.records) + len(a.failures)
}

// Report seals the aggregation into a run report.
func (a *Aggregator) Report(requested int, duration time.Duration) *Report {
	return &Report{
		Records:   a.records,
		Failures:  a.failures,
		Requested: requested,
		Duration:  duration,
	}
}
