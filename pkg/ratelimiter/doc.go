// Package ratelimiter provides per-key token bucket rate limiting.
//
// A bucket holds at most Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes tokens; requests that would drive
// the bucket negative are denied without consuming anything.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, clientip.GetIP(r))
//	if err == nil && !res.Allowed() {
//		// respond 429, Retry-After: res.RetryAfter()
//	}
//
// Buckets live in memory and idle keys are dropped once they would be full
// again, so memory stays proportional to active clients.
package ratelimiter
