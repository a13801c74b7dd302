// Package ratelimit enforces a minimum interval between consecutive HTTP
// requests. The interval is the reciprocal of a requests-per-second budget
// and is measured from the end of the previous request to the start of the
// next one.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restclient_throttle_waits_total",
		Help: "Total number of requests delayed to honor the minimum interval",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restclient_throttle_wait_seconds",
		Help:    "Time spent waiting for the minimum request interval",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// ErrInvalidRate is returned when the configured rate is zero or negative.
var ErrInvalidRate = errors.New("requests per second must be greater than zero")

// Pacer spaces requests so that no two are issued closer together than the
// configured interval. The last-request timestamp is guarded by a mutex so
// concurrent callers cannot both observe a stale value; callers waiting at
// the same time serialize on the lock.
type Pacer struct {
	interval time.Duration
	logger   zerolog.Logger

	mu    sync.Mutex
	clock Clock
	last  time.Time
}

// NewPacer creates a pacer for the given request rate.
func NewPacer(requestsPerSecond float64, logger zerolog.Logger) (*Pacer, error) {
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("%w (got %g)", ErrInvalidRate, requestsPerSecond)
	}

	return &Pacer{
		interval: time.Duration(float64(time.Second) / requestsPerSecond),
		logger:   logger,
		clock:    realClock{},
	}, nil
}

// Interval returns the minimum gap enforced between requests.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// SetClock replaces the pacer's clock (for testing).
func (p *Pacer) SetClock(clock Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
}

// Wait blocks until at least one interval has elapsed since the last
// recorded request. The first request is never delayed. The lock is held
// across the sleep so the check-then-sleep sequence is atomic with respect
// to other callers.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last.IsZero() {
		return nil
	}

	remaining := p.interval - p.clock.Now().Sub(p.last)
	if remaining <= 0 {
		return nil
	}

	throttleWaitsTotal.Inc()
	throttleWaitSeconds.Observe(remaining.Seconds())

	p.logger.Debug().
		Dur("wait", remaining).
		Msg("Pacing request")

	return p.clock.Sleep(ctx, remaining)
}

// Record stamps the completion time of a request. Call it after the
// transport returns, whether or not the request succeeded.
func (p *Pacer) Record() {
	p.mu.Lock()
	p.last = p.clock.Now()
	p.mu.Unlock()
}
