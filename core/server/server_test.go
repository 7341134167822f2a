package server_test

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
	"github.com/dmitrymomot/dispatch/core/server"
)

func waitForAddr(t *testing.T, s *server.Server) string {
	t.Helper()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return s.Addr()
}

func TestServerServesAndStops(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/ping", func(*router.Context) (*handler.Response, error) {
		return response.String("pong"), nil
	})

	s := server.New("127.0.0.1:0", server.WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, r) }()

	addr := waitForAddr(t, s)
	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	// Start sealed the router.
	assert.Panics(t, func() {
		r.Get("/late", func(*router.Context) (*handler.Response, error) { return nil, nil })
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerAlreadyRunning(t *testing.T) {
	t.Parallel()

	s := server.New("127.0.0.1:0")
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx, h) }()
	waitForAddr(t, s)

	assert.ErrorIs(t, s.Start(ctx, h), server.ErrServerAlreadyRunning)
}

func TestServerListenError(t *testing.T) {
	t.Parallel()

	s := server.New("256.0.0.1:bad")
	err := s.Start(context.Background(), http.NotFoundHandler())
	assert.Error(t, err)
	assert.Empty(t, s.Addr())
}

func TestServerNilHandler(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, server.New(":0").Start(context.Background(), nil), server.ErrNilHandler)
}

func TestStopWhenNotRunning(t *testing.T) {
	t.Parallel()

	assert.NoError(t, server.New(":0").Stop())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := server.NewFromConfig(server.Config{})
	assert.ErrorIs(t, err, server.ErrMissingAddress)

	cfg := server.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	s, err := server.NewFromConfig(cfg)
	require.NoError(t, err)

	var hits atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	run := s.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	done := make(chan error, 1)
	go func() { done <- run() }()

	addr := waitForAddr(t, s)
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())

	cancel()
	assert.NoError(t, <-done)
}
