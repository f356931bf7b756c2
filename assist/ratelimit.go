package assist

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RateLimiter enforces a request rate and a bound on in-flight calls across
// all threads using a token bucket and a weighted semaphore.
type RateLimiter struct {
	requestLimiter *rate.Limiter
	inflight       *semaphore.Weighted
}

// NewRateLimiter creates a rate limiter with the given constraints.
// A requestsPerMin of 0 means unlimited requests.
// A maxConcurrent of 0 means unlimited concurrency.
func NewRateLimiter(requestsPerMin, maxConcurrent int) *RateLimiter {
	rl := &RateLimiter{}

	if requestsPerMin > 0 {
		r := rate.Limit(float64(requestsPerMin) / 60.0)
		rl.requestLimiter = rate.NewLimiter(r, requestsPerMin)
	}

	if maxConcurrent > 0 {
		rl.inflight = semaphore.NewWeighted(int64(maxConcurrent))
	}

	return rl
}

// AllowRequest blocks until the request is allowed or the context is done.
// Returns nil immediately if request rate limiting is disabled.
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	if rl == nil || rl.requestLimiter == nil {
		return nil
	}
	return rl.requestLimiter.Wait(ctx)
}

// Acquire blocks until an in-flight slot is free and returns its release
// function.
func (rl *RateLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if rl == nil || rl.inflight == nil {
		return func() {}, nil
	}
	if err := rl.inflight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { rl.inflight.Release(1) }, nil
}
