package middleware

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/response"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for successful requests (default: slog.LevelInfo)
	LogLevel slog.Level

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging (default: "http")
	Component string
}

// Logging creates a request logging middleware with default configuration.
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{
		Logger: log,
	})
}

// LoggingWithConfig creates a middleware that writes one record per request
// once the rest of the chain has returned. The status comes from the response,
// or from the error's HTTP mapping when the chain failed.
// 5xx results log at error level, 4xx and slow requests at warning level.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}

	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		start := time.Now()
		resp, err := next.Run(ctx)
		latency := time.Since(start)

		req := ctx.Request()
		requestID, _ := GetRequestID(ctx)
		clientIP, _ := GetClientIP(ctx)

		status := statusOf(resp, err)

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
			logger.Route(ctx.RoutePattern()),
			logger.StatusCode(status),
			logger.Latency(latency),
			logger.RequestID(requestID),
			logger.ClientIP(clientIP),
			logger.UserAgent(req.UserAgent()),
		}
		if req.ContentLength > 0 {
			attrs = append(attrs, logger.BytesIn(req.ContentLength))
		}
		if resp != nil {
			attrs = append(attrs, logger.BytesOut(int64(len(resp.Body()))))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			attrs = append(attrs, logger.TraceID(sc.TraceID().String()))
		}

		level := cfg.LogLevel
		switch {
		case status >= 500:
			level = slog.LevelError
			attrs = append(attrs, logger.Error(err))
		case status >= 400:
			level = slog.LevelWarn
			attrs = append(attrs, logger.Error(err))
		case latency > cfg.SlowRequestThreshold:
			level = slog.LevelWarn
			attrs = append(attrs, slog.Bool("slow_request", true))
		}

		cfg.Logger.LogAttrs(ctx, level, "HTTP request completed", attrs...)

		return resp, err
	}
}

// statusOf reports the status the client will receive for a chain result.
func statusOf(resp *handler.Response, err error) int {
	if err != nil {
		return response.ToHTTPError(err).Status
	}
	if resp == nil {
		return response.ErrInternalServerError.Status
	}
	return resp.Status()
}
