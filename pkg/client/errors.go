package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrAttemptsExhausted is returned when the attempt budget is spent
	// without a successful response.
	ErrAttemptsExhausted = errors.New("attempt budget exhausted")

	// ErrFetchAborted is returned when the context is cancelled while a
	// fetch is queued, in flight, or waiting to retry.
	ErrFetchAborted = errors.New("fetch aborted")
)

// APIError is a response from the orders API that did not yield an order.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orders api %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("orders api %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
