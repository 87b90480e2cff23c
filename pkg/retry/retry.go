// Package retry provides a small retry policy for operations against
// flaky upstreams: a bounded attempt count, an exponential backoff
// schedule, and support for server-indicated delays.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DelayHint is implemented by errors that carry a server-indicated
// retry delay, such as a 429 response with a Retry-After header.
type DelayHint interface {
	RetryDelay() time.Duration
}

// Policy controls how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay seeds the exponential schedule: attempt n waits BaseDelay * 2^n.
	BaseDelay time.Duration
	// Retryable reports whether an error is worth retrying.
	// A nil predicate retries every error.
	Retryable func(error) bool
	// Sleep overrides the wait between attempts, for tests.
	Sleep func(time.Duration)
}

// Do runs fn until it succeeds, exhausts the policy's attempts, fails
// with a non-retryable error, or the context is cancelled. The wait
// before attempt n is BaseDelay * 2^(n-1), unless the error carries a
// DelayHint, which takes precedence.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			var hint DelayHint
			if errors.As(err, &hint) {
				delay = hint.RetryDelay()
			}
			sleep(delay)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
