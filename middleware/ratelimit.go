package middleware

import (
	"fmt"
	"strconv"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/pkg/clientip"
	"github.com/dmitrymomot/dispatch/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Limiter is the rate limiting implementation to use
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defines how to extract the rate limiting key from requests (default: client IP)
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler builds the response for rejected requests (default: 429 Too Many Requests)
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) *handler.Response
	// SetHeaders determines whether to include rate limit information in response headers
	SetHeaders bool
}

// RateLimit creates a rate limiting middleware with the provided configuration.
// Panics with ErrLimiterRequired if no limiter is provided.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	r.Use(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
//		Limiter:    limiter,
//		SetHeaders: true,
//	}))
//
// Rejected requests get a JSON 429 response and the rest of the chain does
// not run. With SetHeaders the X-RateLimit-* headers are set on every
// response and Retry-After on rejections.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic(ErrLimiterRequired)
	}

	// Prefer the IP stored by the ClientIP middleware, then resolve it directly.
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx handler.Context) string {
			if ip, ok := GetClientIP(ctx); ok {
				return ip
			}
			return clientip.GetIP(ctx.Request())
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, result *ratelimiter.Result) *handler.Response {
			err := response.ErrTooManyRequests
			if result != nil && result.RetryAfter() > 0 {
				err = err.WithDetails(map[string]any{
					"retry_after": fmt.Sprintf("%.0f", result.RetryAfter().Seconds()),
				})
			}
			return response.JSONErrorHandler(ctx, err)
		}
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		result, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
		if err != nil {
			return nil, response.ErrInternalServerError.WithError(err)
		}

		if !result.Allowed() {
			resp := cfg.ErrorHandler(ctx, result)
			if cfg.SetHeaders {
				setRateLimitHeaders(resp, result)
			}
			return resp, nil
		}

		resp, err := next.Run(ctx)
		if resp != nil && cfg.SetHeaders {
			setRateLimitHeaders(resp, result)
		}
		return resp, err
	}
}

// setRateLimitHeaders adds the standard rate limiting headers:
//
//	X-RateLimit-Limit     maximum requests allowed in the window
//	X-RateLimit-Remaining requests left, clamped to 0
//	X-RateLimit-Reset     unix time when the bucket is full again
//	Retry-After           seconds to wait, only when blocked
func setRateLimitHeaders(resp *handler.Response, result *ratelimiter.Result) {
	resp.SetHeader("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	resp.SetHeader("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	resp.SetHeader("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if !result.Allowed() && result.RetryAfter() > 0 {
		resp.SetHeader("Retry-After", strconv.Itoa(int(result.RetryAfter().Seconds())))
	}
}
