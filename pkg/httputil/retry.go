package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] attempts the
// operation again for these and gives up immediately on anything else.
// After, when set, is the wait before the next attempt and takes
// precedence over the backoff schedule. Rate-limited responses use it
// to carry the server's Retry-After value.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, returns a non-retryable error, or
// attempts runs out. The wait between attempts starts at delay and
// doubles, unless the error carries its own After hint. Cancelling ctx
// aborts the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		var re *RetryableError
		if !errors.As(err, &re) || attempt == attempts {
			return err
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		} else {
			delay *= 2
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
