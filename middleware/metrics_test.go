package middleware_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
	"github.com/dmitrymomot/dispatch/middleware"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	r := router.New[C]()
	r.Use(middleware.MetricsWithConfig[C](middleware.MetricsConfig{
		Registerer: reg,
		Namespace:  "app",
	}))
	r.Get("/users/:id", ok("user"))
	r.Post("/users", fail(response.ErrConflict))

	get(t, r, "/users/1")
	get(t, r, "/users/2")
	do(t, r, newRequest(http.MethodPost, "/users"))
	get(t, r, "/nope")

	expected := `
# HELP app_requests_total Total number of HTTP requests by method, route and status code.
# TYPE app_requests_total counter
app_requests_total{method="GET",route="/users/:id",status="200"} 2
app_requests_total{method="GET",route="unmatched",status="404"} 1
app_requests_total{method="POST",route="/users",status="409"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_requests_total"))

	count, err := testutil.GatherAndCount(reg, "app_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetricsSharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := middleware.MetricsConfig{Registerer: reg}

	a := newRouter(ok("a"), middleware.MetricsWithConfig[C](cfg))
	b := newRouter(ok("b"), middleware.MetricsWithConfig[C](cfg))

	get(t, a, "/test")
	get(t, b, "/test")

	expected := `
# HELP http_requests_total Total number of HTTP requests by method, route and status code.
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/test",status="200"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "http_requests_total"))
}

func TestMetricsBoundsMethodLabel(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	r := router.New[C]()
	r.Use(middleware.MetricsWithConfig[C](middleware.MetricsConfig{Registerer: reg}))
	r.Handle("/any", ok("any"))
	r.Get("/only-get", ok("get"))

	do(t, r, newRequest("PURGE", "/any"))
	do(t, r, newRequest("BREW", "/any"))
	do(t, r, newRequest("FOO", "/only-get"))

	expected := `
# HELP http_requests_total Total number of HTTP requests by method, route and status code.
# TYPE http_requests_total counter
http_requests_total{method="other",route="/any",status="200"} 2
http_requests_total{method="other",route="unmatched",status="405"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "http_requests_total"))
}
