// Package retry wraps registry calls with the bounded-backoff policy for
// transient failures: only an unavailable owner is retried; every domain
// or validation error is final and returned immediately.
package retry

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tally-dev/tally/internal/model"
)

// Policy bounds the backoff.
type Policy struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPolicy matches the usual supervisor restart window.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 50 * time.Millisecond,
		MaxElapsedTime:  3 * time.Second,
	}
}

// Do runs op, retrying with increasing backoff while it fails with
// model.ErrUnavailable, up to the policy's elapsed ceiling.
func Do[T any](p Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = p.MaxElapsedTime

	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, model.ErrUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b)
}
