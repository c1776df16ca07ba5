package devicegrant

import (
	"context"
	"time"
)

// Clock abstracts time for the polling loop so the back-off schedule can be
// unit-tested step by step without real sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until the context is done, returning the
	// context error in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
