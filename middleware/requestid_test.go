package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/middleware"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid and stores it in context", func(t *testing.T) {
		t.Parallel()

		var captured string
		r := newRouter(func(ctx C) (*handler.Response, error) {
			id, found := middleware.GetRequestID(ctx)
			require.True(t, found)
			captured = id
			return response.String(id), nil
		}, middleware.RequestID[C]())

		rec := get(t, r, "/test")

		assert.Equal(t, http.StatusOK, rec.Code)
		_, err := uuid.Parse(captured)
		require.NoError(t, err)
		assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, captured, rec.Body.String())
	})

	t.Run("reuses incoming id when configured", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("ok"), middleware.RequestIDWithConfig[C](middleware.RequestIDConfig{
			HeaderName:  "X-Trace",
			UseExisting: true,
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Trace", "upstream-1")
		rec := do(t, r, req)

		assert.Equal(t, "upstream-1", rec.Header().Get("X-Trace"))
	})

	t.Run("ignores incoming id by default", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("ok"), middleware.RequestIDWithConfig[C](middleware.RequestIDConfig{
			Generator: func() string { return "generated" },
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "spoofed")
		rec := do(t, r, req)

		assert.Equal(t, "generated", rec.Header().Get("X-Request-ID"))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		r := newRouter(func(ctx C) (*handler.Response, error) {
			_, found := middleware.GetRequestID(ctx)
			assert.False(t, found)
			return response.String("ok"), nil
		}, middleware.RequestIDWithConfig[C](middleware.RequestIDConfig{
			Skip: func(handler.Context) bool { return true },
		}))

		rec := get(t, r, "/test")
		assert.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("header on caught errors", func(t *testing.T) {
		t.Parallel()

		r := newRouter(fail(errors.New("boom")),
			middleware.RequestIDWithConfig[C](middleware.RequestIDConfig{
				Generator: func() string { return "rid" },
			}),
			middleware.CatchErrors[C](),
		)

		rec := get(t, r, "/test")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "rid", rec.Header().Get("X-Request-ID"))
	})
}
