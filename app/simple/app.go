package simple

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/dispatch/core/config"
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/health"
	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
	"github.com/dmitrymomot/dispatch/core/server"
	"github.com/dmitrymomot/dispatch/core/state"
	"github.com/dmitrymomot/dispatch/middleware"
	"github.com/dmitrymomot/dispatch/pkg/ratelimiter"
)

// App wires configuration, logging, metrics, the router and the HTTP server
// into a ready-to-run service. Register routes on Router() before Run.
type App struct {
	config     Config
	hasConfig  bool
	router     router.Router[*Context]
	server     *server.Server
	logger     *slog.Logger
	registry   *prometheus.Registry
	stateItems []any
	checks     []health.Check
	mountOnce  sync.Once
}

type AppOption func(*App) error

// NewApp builds an App. Configuration is read from the environment unless
// WithConfig is given.
func NewApp(opts ...AppOption) (*App, error) {
	app := &App{}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.hasConfig {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = newLogger(app.config)
	}

	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if app.server == nil {
		s, err := server.NewFromConfig(app.config.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.server = s
	}

	r, err := app.newRouter()
	if err != nil {
		return nil, err
	}
	app.router = r

	return app, nil
}

func newLogger(cfg Config) *slog.Logger {
	var envOpt logger.Option
	switch cfg.Env {
	case "production":
		envOpt = logger.WithProduction(cfg.AppName)
	case "staging":
		envOpt = logger.WithStaging(cfg.AppName)
	default:
		envOpt = logger.WithDevelopment(cfg.AppName)
	}

	opts := []logger.Option{envOpt}
	var level slog.Level
	if cfg.LogLevel != "" && level.UnmarshalText([]byte(cfg.LogLevel)) == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.New(opts...)
}

func (a *App) newRouter() (router.Router[*Context], error) {
	st := state.New(append([]any{a.logger, a.config}, a.stateItems...)...)

	mws := []handler.Middleware[*Context]{
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
		middleware.MetricsWithConfig[*Context](middleware.MetricsConfig{
			Registerer: a.registry,
			Skip:       a.isMetricsRequest,
		}),
		middleware.CatchErrorsWith(response.JSONErrorHandler[*Context]),
		middleware.Tracing[*Context](),
		middleware.LoggingWithConfig[*Context](middleware.LoggingConfig{
			Logger: a.logger,
			Skip:   a.isMetricsRequest,
		}),
	}

	if a.config.RateLimitCapacity > 0 {
		limiter, err := ratelimiter.NewBucket(ratelimiter.Config{
			Capacity:       a.config.RateLimitCapacity,
			RefillRate:     a.config.RateLimitRefill,
			RefillInterval: a.config.RateLimitInterval,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.RateLimit[*Context](middleware.RateLimitConfig{
			Limiter:    limiter,
			SetHeaders: true,
		}))
	}

	if a.config.MaxBodySize > 0 {
		mws = append(mws, middleware.BodyLimitWithSize[*Context](a.config.MaxBodySize))
	}
	if a.config.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout[*Context](a.config.RequestTimeout))
	}

	r := router.New[*Context](
		router.WithContextFactory(newContext),
		router.WithLogger[*Context](a.logger),
		router.WithState[*Context](st),
		router.WithErrorHandler(response.JSONErrorHandler[*Context]),
		router.WithMiddleware(mws...),
	)

	return r, nil
}

// mountInternal registers the routes owned by the App. It runs on first
// use so that Router().Use keeps working until then.
func (a *App) mountInternal() {
	a.mountOnce.Do(func() {
		if a.config.MetricsPath != "" {
			a.router.Get(a.config.MetricsPath, metricsHandler(a.registry))
		}
		if a.config.HealthPath != "" {
			base := strings.TrimSuffix(a.config.HealthPath, "/")
			a.router.Get(base+"/live", health.Liveness[*Context])
			a.router.Get(base+"/ready", health.Readiness[*Context](a.logger, a.checks...))
		}
	})
}

func (a *App) isMetricsRequest(ctx handler.Context) bool {
	return a.config.MetricsPath != "" && ctx.Request().URL.Path == a.config.MetricsPath
}

// metricsHandler exposes g in the Prometheus exposition format negotiated
// from the Accept header.
func metricsHandler(g prometheus.Gatherer) handler.HandlerFunc[*Context] {
	return func(ctx *Context) (*handler.Response, error) {
		mfs, err := g.Gather()
		if err != nil {
			return nil, response.ErrInternalServerError.WithError(err)
		}

		format := expfmt.Negotiate(ctx.Request().Header)

		var buf bytes.Buffer
		enc := expfmt.NewEncoder(&buf, format)
		for _, mf := range mfs {
			if err := enc.Encode(mf); err != nil {
				return nil, response.ErrInternalServerError.WithError(err)
			}
		}
		if closer, ok := enc.(expfmt.Closer); ok {
			if err := closer.Close(); err != nil {
				return nil, response.ErrInternalServerError.WithError(err)
			}
		}

		return response.Bytes(buf.Bytes(), strings.TrimSpace(string(format))), nil
	}
}

// Router returns the application router. Root middleware must be added
// before the first route is registered and before the App serves anything.
func (a *App) Router() router.Router[*Context] {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Registry returns the Prometheus registry served on the metrics path.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Addr returns the address the server is bound to once Run has started it.
func (a *App) Addr() string {
	return a.server.Addr()
}

// ServeHTTP dispatches directly through the router, bypassing the server.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mountInternal()
	a.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled or the server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.mountInternal()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(gctx, a.router))

	a.logger.InfoContext(ctx, "application started",
		logger.Component("app"),
		logger.Key("env", a.config.Env),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// WithConfig skips environment loading and uses cfg.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		app.hasConfig = true
		return nil
	}
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithServer(server *server.Server) AppOption {
	return func(app *App) error {
		if server == nil {
			return errors.New("server cannot be nil")
		}
		app.server = server
		return nil
	}
}

// WithRegistry replaces the Prometheus registry. No default collectors are
// added to it.
func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		app.registry = reg
		return nil
	}
}

// WithState adds shared values, such as database pools, to the application
// state available through ctx.State().
func WithState(values ...any) AppOption {
	return func(app *App) error {
		app.stateItems = append(app.stateItems, values...)
		return nil
	}
}

// WithHealthChecks adds dependency checks to the readiness probe served at
// HealthPath + "/ready".
func WithHealthChecks(checks ...health.Check) AppOption {
	return func(app *App) error {
		app.checks = append(app.checks, checks...)
		return nil
	}
}
