package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/middleware"
)

func TestCatchErrors(t *testing.T) {
	t.Parallel()

	t.Run("outer middleware sees a response", func(t *testing.T) {
		t.Parallel()

		var seen *handler.Response
		outer := func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
			resp, err := next.Run(ctx)
			require.NoError(t, err)
			seen = resp
			resp.SetHeader("X-Outer", "1")
			return resp, nil
		}

		r := newRouter(fail(response.ErrConflict), outer, middleware.CatchErrors[C]())
		rec := get(t, r, "/test")

		require.NotNil(t, seen)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Outer"))
		assert.Equal(t, "Conflict", rec.Body.String())
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		r := newRouter(fail(response.ErrNotFound.WithMessage("no such user")),
			middleware.CatchErrorsWith(response.JSONErrorHandler[C]))
		rec := get(t, r, "/test")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "not_found", got["code"])
		assert.Equal(t, "no such user", got["message"])
	})

	t.Run("nil from custom handler falls back to text", func(t *testing.T) {
		t.Parallel()

		r := newRouter(fail(errors.New("boom")),
			middleware.CatchErrorsWith(func(C, error) *handler.Response { return nil }))
		rec := get(t, r, "/test")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	})

	t.Run("success passes through", func(t *testing.T) {
		t.Parallel()

		r := newRouter(ok("fine"), middleware.CatchErrors[C]())
		rec := get(t, r, "/test")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fine", rec.Body.String())
	})
}
