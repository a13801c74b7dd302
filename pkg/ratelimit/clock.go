package ratelimit

import (
	"context"
	"time"
)

// Clock abstracts time so tests can drive the pacer deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for the given duration or until the context is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock is the wall-clock implementation used outside of tests.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
