package chain

import (
	"context"
	"errors"
	"time"
)

const maxRetryDelay = 10 * time.Second

// retryCall runs fn until it succeeds or maxRetries retries are spent. The
// delay doubles after each failure, capped at maxRetryDelay. Context errors
// returned by fn are final.
func retryCall(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if delay < maxRetryDelay {
			delay *= 2
		}
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
