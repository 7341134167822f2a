package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/middleware"
)

func echoClientIP(ctx C) (*handler.Response, error) {
	ip, found := middleware.GetClientIP(ctx)
	if !found {
		return response.String("none"), nil
	}
	return response.String(ip), nil
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	t.Run("stores ip from forwarded headers", func(t *testing.T) {
		t.Parallel()

		r := newRouter(echoClientIP, middleware.ClientIP[C]())

		req := fromIP("10.0.0.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := do(t, r, req)

		assert.Equal(t, "203.0.113.7", rec.Body.String())
		assert.Empty(t, rec.Header().Get("X-Client-IP"))
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()

		r := newRouter(echoClientIP, middleware.ClientIPWithConfig[C](middleware.ClientIPConfig{
			StoreInHeader: true,
			HeaderName:    "X-Real-Client",
		}))

		rec := do(t, r, fromIP("198.51.100.3"))

		assert.Equal(t, "none", rec.Body.String())
		assert.Equal(t, "198.51.100.3", rec.Header().Get("X-Real-Client"))
	})

	t.Run("validation failure is forbidden", func(t *testing.T) {
		t.Parallel()

		var called bool
		r := newRouter(func(C) (*handler.Response, error) {
			called = true
			return response.String("ok"), nil
		}, middleware.ClientIPWithConfig[C](middleware.ClientIPConfig{
			ValidateFunc: func(_ handler.Context, ip string) error {
				if ip == "198.51.100.66" {
					return errors.New("blocked")
				}
				return nil
			},
		}))

		rec := do(t, r, fromIP("198.51.100.66"))
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)

		rec = do(t, r, fromIP("198.51.100.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
