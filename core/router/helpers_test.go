package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
)

func serve(t *testing.T, h http.Handler, method, target string, body ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rb io.Reader
	if len(body) > 0 {
		rb = strings.NewReader(body[0])
	}
	req := httptest.NewRequest(method, target, rb)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// text responds with s.
func text(s string) handler.HandlerFunc[*router.Context] {
	return func(*router.Context) (*handler.Response, error) {
		return response.String(s), nil
	}
}

// echoParams responds with the matched route pattern and its parameters.
func echoParams(keys ...string) handler.HandlerFunc[*router.Context] {
	return func(ctx *router.Context) (*handler.Response, error) {
		parts := []string{ctx.RoutePattern()}
		for _, k := range keys {
			v, err := ctx.Param(k)
			if err != nil {
				return nil, err
			}
			parts = append(parts, k+"="+v)
		}
		return response.String(strings.Join(parts, " ")), nil
	}
}

func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()
		p := recover()
		require.NotNil(t, p, "expected panic")
		err, ok := p.(error)
		require.True(t, ok, "panic value is not an error: %v", p)
		require.ErrorIs(t, err, target)
	}()
	fn()
}
