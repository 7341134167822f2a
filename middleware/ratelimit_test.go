package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/middleware"
	"github.com/dmitrymomot/dispatch/pkg/ratelimiter"
)

func newBucket(t *testing.T, capacity int) *ratelimiter.Bucket {
	t.Helper()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := ratelimiter.NewBucket(ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Minute,
	}, ratelimiter.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return b
}

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":1234"
	return req
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("rejects once the bucket is empty", func(t *testing.T) {
		t.Parallel()

		var calls int
		r := newRouter(func(C) (*handler.Response, error) {
			calls++
			return response.String("ok"), nil
		}, middleware.RateLimit[C](middleware.RateLimitConfig{
			Limiter:    newBucket(t, 2),
			SetHeaders: true,
		}))

		rec := do(t, r, fromIP("198.51.100.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Empty(t, rec.Header().Get("Retry-After"))

		rec = do(t, r, fromIP("198.51.100.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = do(t, r, fromIP("198.51.100.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, 2, calls)

		retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.InDelta(t, 60, retry, 1)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "too_many_requests", payload["code"])
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("ok"), middleware.RateLimit[C](middleware.RateLimitConfig{
			Limiter: newBucket(t, 1),
		}))

		assert.Equal(t, http.StatusOK, do(t, r, fromIP("198.51.100.1")).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(t, r, fromIP("198.51.100.1")).Code)
		assert.Equal(t, http.StatusOK, do(t, r, fromIP("198.51.100.2")).Code)
	})

	t.Run("uses stored client ip and forwarded headers", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("ok"),
			middleware.ClientIP[C](),
			middleware.RateLimit[C](middleware.RateLimitConfig{Limiter: newBucket(t, 1)}),
		)

		first := fromIP("10.0.0.1")
		first.Header.Set("X-Forwarded-For", "203.0.113.5")
		second := fromIP("10.0.0.1")
		second.Header.Set("X-Forwarded-For", "203.0.113.6")

		assert.Equal(t, http.StatusOK, do(t, r, first).Code)
		assert.Equal(t, http.StatusOK, do(t, r, second).Code)
	})

	t.Run("custom key and no headers", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("ok"), middleware.RateLimit[C](middleware.RateLimitConfig{
			Limiter:      newBucket(t, 1),
			KeyExtractor: func(handler.Context) string { return "global" },
		}))

		rec := do(t, r, fromIP("198.51.100.1"))
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, http.StatusTooManyRequests, do(t, r, fromIP("198.51.100.2")).Code)
	})

	t.Run("requires limiter", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, middleware.ErrLimiterRequired, func() {
			middleware.RateLimit[C](middleware.RateLimitConfig{})
		})
	})
}
