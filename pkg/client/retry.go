package client

import (
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restclient_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restclient_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restclient_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryPolicy governs automatic re-attempts of a failed call. It is an
// immutable value applied uniformly to every request the client issues.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt, so a
	// request is issued at most MaxRetries+1 times.
	MaxRetries int

	// InitialBackoff is the backoff before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64

	// RetryableStatus is the set of HTTP statuses retried transparently.
	// Every other error status is handed back to the caller unretried.
	RetryableStatus map[int]bool
}

// DefaultRetryPolicy returns the standard transient-failure policy: three
// retries with exponential backoff from one second, for 429 and the
// transient 5xx statuses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableStatus: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// retryableStatusCode reports whether a status code is in the retryable set.
func (p RetryPolicy) retryableStatusCode(code int) bool {
	return p.RetryableStatus[code]
}

// backoffFor returns the backoff before retry attempt n (1-based), with
// jitter of +-20% to avoid thundering herd.
func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	if limit := float64(p.MaxBackoff); p.MaxBackoff > 0 && backoff > limit {
		backoff = limit
	}
	return time.Duration(backoff * (0.8 + rand.Float64()*0.4))
}

// classifyStatus categorizes an HTTP error status for metrics and logging.
func classifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
