package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
)

type C = *router.Context

func ok(body string) handler.HandlerFunc[C] {
	return func(C) (*handler.Response, error) {
		return response.String(body), nil
	}
}

func fail(err error) handler.HandlerFunc[C] {
	return func(C) (*handler.Response, error) {
		return nil, err
	}
}

// newRouter returns a router with mws in the root scope and h on GET /test.
func newRouter(h handler.HandlerFunc[C], mws ...handler.Middleware[C]) router.Router[C] {
	r := router.New[C]()
	r.Use(mws...)
	r.Get("/test", h)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

func body(s string) io.Reader {
	return strings.NewReader(s)
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
