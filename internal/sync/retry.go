package sync

import (
	"context"
	"time"
)

// withRetry runs fn until it succeeds or the attempt budget is spent.
// maxRetries counts the extra attempts after the first; the wait between
// attempts starts at baseDelay and doubles each time. RPC providers
// throttle log and header fetches, so every chain call goes through here.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseDelay << (attempt - 1)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}
