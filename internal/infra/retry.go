package infra

import (
	"context"
	"time"
)

// RetryRead re-attempts a read-only operation on transient failure with a
// short backoff. Mutating operations must NOT go through here: a timed-out
// write may have committed, and replaying it would double-apply.
func RetryRead(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	backoff := 50 * time.Millisecond
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
