package session

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newReconnectBackoff builds the exponential back-off spec.md §4.4
// specifies for the reconnect loop: starts at initial, doubles, caps
// at max, retries forever until ctx is canceled.
func newReconnectBackoff(ctx context.Context, initial, max time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = max
	b.MaxElapsedTime = 0 // unbounded retries unless stop() is called
	b.Multiplier = 2
	b.RandomizationFactor = 0 // no jitter: attempts must not fire earlier than the exponential floor
	return backoff.WithContext(b, ctx)
}

// reconnectLoop calls attempt until it succeeds, ctx is canceled, or
// attempt returns a non-retryable error wrapped in
// *backoff.PermanentError. notify is invoked with each failure and
// the delay before the next attempt, mirroring the
// backoff.RetryNotify idiom used for reconnect-style loops.
func reconnectLoop(ctx context.Context, initial, max time.Duration, notify func(err error, next time.Duration), attempt func() error) error {
	b := newReconnectBackoff(ctx, initial, max)
	return backoff.RetryNotify(attempt, b, notify)
}
