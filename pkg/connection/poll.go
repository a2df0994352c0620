package connection

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout reports that a poll loop's deadline elapsed before the
// predicate held. Callers wrap it into their own typed timeout error.
var ErrPollTimeout = errors.New("poll deadline elapsed")

// PollUntil fetches repeatedly until done reports true or the timeout
// elapses. The first fetch happens immediately; subsequent fetches wait
// interval apart. A fetch error aborts the loop. On timeout the zero value
// and ErrPollTimeout are returned; the last observed value is discarded
// because it never satisfied the predicate.
//
// The helper is shared by connection waits and router session readiness
// checks.
func PollUntil[T any](ctx context.Context, interval, timeout time.Duration, fetch func(context.Context) (T, error), done func(T) bool) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := fetch(ctx)
		if err != nil {
			// A deadline hit mid-fetch is the loop's timeout, not a
			// fetch failure.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
				return zero, ErrPollTimeout
			}
			return zero, err
		}
		if done(v) {
			return v, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return zero, ErrPollTimeout
			}
			return zero, ctx.Err()
		case <-ticker.C:
		}
	}
}
