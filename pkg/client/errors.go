package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled while
	// waiting on the pacer or a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ConfigError reports invalid construction-time configuration, such as a
// non-positive request rate or a missing API token. It is surfaced
// immediately and never retried.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// TransportError reports a network-level failure (DNS, connection refused,
// TLS handshake) surfaced after the retry budget is spent. Timeout is true
// when a connect or read timeout expired rather than a generic failure.
type TransportError struct {
	URL     string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	kind := "transport"
	if e.Timeout {
		kind = "timeout"
	}
	return fmt.Sprintf("%s error for %s: %v", kind, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports an HTTP error status (>= 400). The client hands 4xx
// responses back without error; callers opt into the check through
// Response.EnsureSuccess. Retryable statuses that outlive the retry budget
// surface as a StatusError wrapped in ErrRetryExhausted.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %s for %s", e.Status, e.URL)
}

// DecodeError reports a response body that is not valid JSON, or not the
// JSON shape the caller required.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrorClass represents a classification of request failures, used for
// metrics labels and retry decisions.
type ErrorClass string

const (
	// ErrorClassClient represents non-retryable 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents connect/read timeout expiry.
	ErrorClassTimeout ErrorClass = "timeout"
)
