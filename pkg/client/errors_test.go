package client

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "requests_per_second", Reason: "must be greater than zero (got 0)"}

	want := "configuration error: requests_per_second: must be greater than zero (got 0)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestTransportError_Error(t *testing.T) {
	inner := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *TransportError
		contains string
	}{
		{
			name:     "generic transport failure",
			err:      &TransportError{URL: "https://api.test/posts", Err: inner},
			contains: "transport error",
		},
		{
			name:     "timeout",
			err:      &TransportError{URL: "https://api.test/posts", Timeout: true, Err: inner},
			contains: "timeout error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); !strings.HasPrefix(got, tt.contains) {
				t.Errorf("Error() = %q, want prefix %q", got, tt.contains)
			}
			if !errors.Is(tt.err, inner) {
				t.Error("Unwrap() should expose the inner error")
			}
		})
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	inner := errors.New("invalid character 'n'")
	err := &DecodeError{URL: "https://api.test/posts", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Unwrap() should expose the inner error")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{404, ErrorClassClient},
		{403, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestRetryPolicy_RetryableStatusCode(t *testing.T) {
	policy := DefaultRetryPolicy()

	for _, code := range []int{429, 500, 502, 503, 504} {
		if !policy.retryableStatusCode(code) {
			t.Errorf("Status %d should be retryable", code)
		}
	}
	for _, code := range []int{400, 401, 403, 404, 418, 501} {
		if policy.retryableStatusCode(code) {
			t.Errorf("Status %d should not be retryable", code)
		}
	}
}

func TestRetryPolicy_BackoffGrowsExponentially(t *testing.T) {
	policy := RetryPolicy{
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}

	for attempt := 1; attempt <= 4; attempt++ {
		base := time.Duration(float64(policy.InitialBackoff) * pow(policy.BackoffMultiplier, attempt-1))
		got := policy.backoffFor(attempt)

		// Jitter is +-20% of the exponential base.
		min := time.Duration(float64(base) * 0.8)
		max := time.Duration(float64(base) * 1.2)
		if got < min || got > max {
			t.Errorf("backoffFor(%d) = %v, want within [%v, %v]", attempt, got, min, max)
		}
	}
}

func TestRetryPolicy_BackoffCapped(t *testing.T) {
	policy := RetryPolicy{
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        4 * time.Second,
		BackoffMultiplier: 2.0,
	}

	got := policy.backoffFor(10)
	if got > time.Duration(float64(4*time.Second)*1.2) {
		t.Errorf("backoffFor(10) = %v, should be capped near MaxBackoff", got)
	}
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
