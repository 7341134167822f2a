package ratelimiter

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter consumes tokens for a key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

// Config describes a token bucket: Capacity tokens at most, RefillRate tokens
// added every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

func (c Config) validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return fmt.Errorf("%w: capacity, refill rate and interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result reports the outcome of a consumption attempt.
type Result struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	retryAfter time.Duration
	allowed    bool
}

// Allowed reports whether the tokens were granted.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter is how long to wait before the same request would succeed.
// Zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	return r.retryAfter
}

// Bucket is an in-memory per-key token bucket backed by x/time/rate.
// Idle keys are evicted once their bucket is full again.
type Bucket struct {
	cfg   Config
	limit rate.Limit
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	sweepAt time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option configures a Bucket.
type Option func(*Bucket)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bucket) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBucket creates a token bucket limiter.
func NewBucket(cfg Config, opts ...Option) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &Bucket{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.RefillRate) / cfg.RefillInterval.Seconds()),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Allow consumes one token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key. Denied requests consume nothing.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 || n > b.cfg.Capacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := b.now()
	lim := b.limiter(key, now)

	res := &Result{Limit: b.cfg.Capacity}
	r := lim.ReserveN(now, n)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.retryAfter = delay
	} else {
		res.allowed = true
	}

	tokens := lim.TokensAt(now)
	res.Remaining = max(0, int(math.Floor(tokens)))
	res.ResetAt = now.Add(b.untilFull(tokens))
	return res, nil
}

// Reset forgets the bucket of key.
func (b *Bucket) Reset(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
}

// Len returns the number of tracked keys.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Bucket) limiter(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.sweepAt) {
		b.sweep(now)
	}

	e, ok := b.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(b.limit, b.cfg.Capacity)}
		b.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops keys idle long enough to have refilled completely.
func (b *Bucket) sweep(now time.Time) {
	idle := b.untilFull(0)
	for key, e := range b.entries {
		if now.Sub(e.lastSeen) > idle {
			delete(b.entries, key)
		}
	}
	b.sweepAt = now.Add(idle)
}

func (b *Bucket) untilFull(tokens float64) time.Duration {
	missing := float64(b.cfg.Capacity) - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(b.limit) * float64(time.Second))
}
