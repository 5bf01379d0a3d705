package paceline

import (
	"context"
	"time"
)

// Clock abstracts time so throttling decisions can be tested without real
// sleeps. All time-dependent code in the package goes through this interface
// instead of calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration

	// Sleep blocks for duration d or until ctx is done, whichever comes
	// first. It returns ctx.Err() if the context ended the sleep early.
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock delegates to the standard time package.
type realClock struct{}

// NewRealClock returns a Clock backed by the standard time package.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
