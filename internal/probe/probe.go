package probe

import (
	"context"
	"time"
)

// Result records the outcome of one bounded readiness poll. Created per run
// and discarded after use.
type Result struct {
	Target   string
	Ready    bool
	Attempts int
	Elapsed  time.Duration
}

// Func answers whether the probed dependency is currently available.
type Func func(ctx context.Context) bool

// WaitUntilReady polls fn up to maxAttempts times, sleeping interval between
// attempts. It returns as soon as fn reports ready. There is no backoff: the
// wait is bounded by maxAttempts*interval and the caller decides whether an
// exhausted poll is fatal. Context cancellation ends the poll early with
// Ready=false.
func WaitUntilReady(ctx context.Context, target string, fn Func, maxAttempts int, interval time.Duration) Result {
	start := time.Now()
	result := Result{Target: target}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		if fn(ctx) {
			result.Ready = true
			result.Elapsed = time.Since(start)
			return result
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result
		case <-time.After(interval):
		}
	}

	result.Elapsed = time.Since(start)
	return result
}
