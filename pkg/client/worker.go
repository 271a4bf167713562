package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/plinphon/FaultyAPI/pkg/orders"
	"github.com/rs/zerolog"
)

// State is a fetch's position in its lifecycle.
type State string

const (
	StatePending        State = "pending"
	StateRequesting     State = "requesting"
	StateWaitingToRetry State = "waiting_to_retry"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
)

// Result is the terminal outcome of fetching one item.
type Result struct {
	ItemID   int
	State    State         // StateSucceeded or StateFailed
	Record   orders.Record // set on success
	Attempts int           // request attempts actually made
	Err      error         // terminal error on failure
}

// attemptResult is one attempt's verdict plus its supporting data.
type attemptResult struct {
	action Action
	record orders.Record
	err    error // the failure behind a Retry or Drop action
}

// FetchItem fetches one order, retrying per the policy until it succeeds,
// is dropped, or spends the attempt budget. Every attempt holds a
// concurrency slot and passes the rate limiter before dialing; the slot is
// released before any retry wait.
func (c *Client) FetchItem(ctx context.Context, itemID int) Result {
	res := Result{ItemID: itemID, State: StatePending}
	logger := c.logger.With().Int("item_id", itemID).Logger()

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		res.Attempts = attempt

		ar, err := c.attempt(ctx, logger, itemID, attempt)
		if err != nil {
			res.State = StateFailed
			res.Err = err
			fetchItemsTotal.WithLabelValues("failed").Inc()
			logger.Warn().Int("attempt", attempt).Err(err).Msg("Fetch aborted")
			return res
		}

		switch ar.action.Kind {
		case Accept:
			res.State = StateSucceeded
			res.Record = ar.record
			fetchItemsTotal.WithLabelValues("succeeded").Inc()
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Item fetched after retry")
			}
			return res

		case Drop:
			res.State = StateFailed
			res.Err = ar.err
			fetchItemsTotal.WithLabelValues("failed").Inc()
			logger.Warn().
				Int("attempt", attempt).
				Str("error_class", string(ar.action.Class)).
				Str("reason", ar.action.Reason).
				Msg("Item dropped")
			return res

		case Retry:
			lastErr = ar.err
			if attempt == c.config.MaxAttempts {
				fetchRetryExhaustedTotal.WithLabelValues(string(ar.action.Class)).Inc()
				res.State = StateFailed
				res.Err = fmt.Errorf("%w after %d attempts: %v", ErrAttemptsExhausted, attempt, lastErr)
				fetchItemsTotal.WithLabelValues("failed").Inc()
				logger.Warn().
					Int("attempts", attempt).
					Str("error_class", string(ar.action.Class)).
					Msg("Attempt budget exhausted")
				return res
			}

			fetchRetriesTotal.WithLabelValues(string(ar.action.Class)).Inc()
			fetchRetryWaitSeconds.WithLabelValues(string(ar.action.Class)).Observe(ar.action.Wait.Seconds())
			logger.Debug().
				Int("attempt", attempt).
				Str("state", string(StateWaitingToRetry)).
				Str("error_class", string(ar.action.Class)).
				Dur("wait", ar.action.Wait).
				Msg("Waiting to retry")

			select {
			case <-ctx.Done():
				res.State = StateFailed
				res.Err = fmt.Errorf("%w: %v", ErrFetchAborted, ctx.Err())
				fetchItemsTotal.WithLabelValues("failed").Inc()
				logger.Warn().Int("attempt", attempt).Msg("Context cancelled during retry wait")
				return res
			case <-time.After(ar.action.Wait):
			}
		}
	}

	// Unreachable: the loop always returns from a terminal branch.
	res.State = StateFailed
	res.Err = fmt.Errorf("%w after %d attempts: %v", ErrAttemptsExhausted, res.Attempts, lastErr)
	return res
}

// attempt runs one request while holding a concurrency slot. The slot is
// released when attempt returns, so retry waits never occupy the gate. The
// returned error is non-nil only when the fetch must abort.
func (c *Client) attempt(ctx context.Context, logger zerolog.Logger, itemID, attempt int) (attemptResult, error) {
	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return attemptResult{}, fmt.Errorf("%w: %v", ErrFetchAborted, err)
	}
	defer release()

	// Admission comes after the slot so the request dials immediately
	// once admitted; waiting on the gate must not consume rate budget.
	if err := c.limiter.Acquire(ctx); err != nil {
		return attemptResult{}, fmt.Errorf("%w: %v", ErrFetchAborted, err)
	}

	logger.Debug().
		Int("attempt", attempt).
		Str("state", string(StateRequesting)).
		Msg("Requesting item")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/item/%d", c.config.BaseURL, itemID), nil)
	if err != nil {
		return attemptResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fetchRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return attemptResult{}, fmt.Errorf("%w: %v", ErrFetchAborted, ctx.Err())
		}
		fetchRequestsTotal.WithLabelValues("transport_error").Inc()
		fetchErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		logger.Warn().Int("attempt", attempt).Err(err).Msg("Request failed")
		return attemptResult{
			action: c.config.Policy.Decide(0, nil, err),
			err:    err,
		}, nil
	}
	defer resp.Body.Close()

	fetchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	action := c.config.Policy.Decide(resp.StatusCode, resp.Header, nil)
	if action.Kind != Accept {
		fetchErrorsTotal.WithLabelValues(string(action.Class)).Inc()
		logger.Warn().
			Int("attempt", attempt).
			Int("status", resp.StatusCode).
			Str("error_class", string(action.Class)).
			Str("action", action.Kind.String()).
			Msg("Request error")
		message := resp.Status
		if action.Reason != "" {
			message = action.Reason
		}
		return attemptResult{
			action: action,
			err: &APIError{
				StatusCode: resp.StatusCode,
				Class:      action.Class,
				Message:    message,
			},
		}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return attemptResult{}, fmt.Errorf("%w: %v", ErrFetchAborted, ctx.Err())
		}
		fetchErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		logger.Warn().Int("attempt", attempt).Err(err).Msg("Reading response body failed")
		return attemptResult{
			action: c.config.Policy.Decide(0, nil, err),
			err:    fmt.Errorf("read response body: %w", err),
		}, nil
	}

	record, err := orders.RecordFromJSON(body)
	if err != nil {
		// A 200 with an undecodable body is not transient.
		fetchErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		return attemptResult{
			action: Action{Kind: Drop, Reason: "invalid response body", Class: ErrorClassClient},
			err:    fmt.Errorf("decode order %d: %w", itemID, err),
		}, nil
	}

	return attemptResult{action: Action{Kind: Accept}, record: record}, nil
}
