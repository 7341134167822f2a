package simple_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/app/simple"
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/server"
	"github.com/dmitrymomot/dispatch/core/state"
)

type greeter struct{ prefix string }

func testConfig() simple.Config {
	cfg := simple.Config{
		Server:         server.DefaultConfig(),
		AppName:        "test",
		Env:            "development",
		MetricsPath:    "/metrics",
		HealthPath:     "/health",
		RequestTimeout: time.Second,
		MaxBodySize:    1024,
	}
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

func newApp(t *testing.T, cfg simple.Config) *simple.App {
	t.Helper()

	app, err := simple.NewApp(
		simple.WithConfig(cfg),
		simple.WithLogger(slog.New(slog.DiscardHandler)),
		simple.WithRegistry(prometheus.NewRegistry()),
		simple.WithState(&greeter{prefix: "hello"}),
	)
	require.NoError(t, err)

	app.Router().Get("/greet/:name", func(ctx *simple.Context) (*handler.Response, error) {
		name, err := ctx.Param("name")
		if err != nil {
			return nil, err
		}
		g := state.MustGet[*greeter](ctx.State())
		assert.NotEmpty(t, ctx.RequestID())
		assert.Equal(t, "test", ctx.Config().AppName)
		return response.String(g.prefix + " " + name), nil
	})
	return app
}

func TestAppServesRoutes(t *testing.T) {
	t.Parallel()

	app := newApp(t, testConfig())

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/bob", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello bob", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAppJSONErrors(t *testing.T) {
	t.Parallel()

	app := newApp(t, testConfig())

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestAppMetricsEndpoint(t *testing.T) {
	t.Parallel()

	app := newApp(t, testConfig())

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/greet/ann", nil))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/greet/:name",status="200"} 1`)
	assert.NotContains(t, rec.Body.String(), `route="/metrics"`)
}

func TestAppHealthProbes(t *testing.T) {
	t.Parallel()

	ready := true
	app, err := simple.NewApp(
		simple.WithConfig(testConfig()),
		simple.WithLogger(slog.New(slog.DiscardHandler)),
		simple.WithRegistry(prometheus.NewRegistry()),
		simple.WithHealthChecks(func(context.Context) error {
			if !ready {
				return errors.New("database unavailable")
			}
			return nil
		}),
	)
	require.NoError(t, err)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = get("/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	ready = false
	rec = get("/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAppRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimitCapacity = 1
	cfg.RateLimitRefill = 1
	cfg.RateLimitInterval = time.Hour
	app := newApp(t, cfg)

	first := httptest.NewRecorder()
	app.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/greet/a", nil))
	second := httptest.NewRecorder()
	app.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/greet/a", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestAppRun(t *testing.T) {
	t.Parallel()

	app := newApp(t, testConfig())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + app.Addr() + "/greet/net")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello net", strings.TrimSpace(string(b)))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewAppRejectsNilOptions(t *testing.T) {
	t.Parallel()

	_, err := simple.NewApp(simple.WithConfig(testConfig()), simple.WithLogger(nil))
	require.Error(t, err)

	_, err = simple.NewApp(simple.WithConfig(testConfig()), simple.WithRegistry(nil))
	require.Error(t, err)
}
