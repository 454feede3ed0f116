// Package retry wraps a fallible operation in exponential backoff with
// jitter, gated on a rate-limit predicate (spec.md §4.2, C2). It is a
// pure higher-order wrapper: the rate-limit predicate is its only
// dependency, so any network-facing call in C4 (and any subprocess call
// a caller wants to shield) can be wrapped the same way.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options configures the backoff schedule. Zero-value fields fall back
// to DefaultOptions' corresponding value.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultOptions matches spec.md §4.2's defaults.
var DefaultOptions = Options{
	MaxRetries:   5,
	InitialDelay: 1 * time.Second,
	MaxDelay:     32 * time.Second,
}

func (o Options) withDefaults() Options {
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultOptions.MaxRetries
	}
	if o.InitialDelay == 0 {
		o.InitialDelay = DefaultOptions.InitialDelay
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = DefaultOptions.MaxDelay
	}
	return o
}

// RateLimitPredicate reports whether err represents a retryable
// rate-limit condition (provider-specific status 429 or an equivalent
// nested field). Any other error is surfaced immediately.
type RateLimitPredicate func(err error) bool

// jitterBackOff implements backoff.BackOff with the exact schedule from
// spec.md §4.2: delay = min(initial * 2^attempt, max) * uniform(0.5, 1.0).
type jitterBackOff struct {
	opts    Options
	attempt int
}

func newJitterBackOff(opts Options) *jitterBackOff {
	return &jitterBackOff{opts: opts}
}

func (b *jitterBackOff) NextBackOff() time.Duration {
	exp := math.Pow(2, float64(b.attempt))
	delay := time.Duration(float64(b.opts.InitialDelay) * exp)
	if delay > b.opts.MaxDelay {
		delay = b.opts.MaxDelay
	}
	b.attempt++
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(float64(delay) * jitter)
}

func (b *jitterBackOff) Reset() { b.attempt = 0 }

// Do runs op, retrying it under exponential backoff with jitter as long
// as isRateLimited reports true for the returned error. After
// opts.MaxRetries unsuccessful attempts, or on the first non-rate-limited
// error, the last error is surfaced immediately.
func Do[T any](ctx context.Context, opts Options, isRateLimited RateLimitPredicate, op func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var result T
	var lastErr error

	b := backoff.WithContext(
		backoff.WithMaxRetries(newJitterBackOff(opts), uint64(opts.MaxRetries)),
		ctx,
	)

	err := backoff.Retry(func() error {
		var opErr error
		result, opErr = op(ctx)
		if opErr == nil {
			return nil
		}
		lastErr = opErr
		if isRateLimited == nil || !isRateLimited(opErr) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}, b)

	if err != nil {
		if lastErr != nil {
			return result, lastErr
		}
		return result, err
	}
	return result, nil
}
