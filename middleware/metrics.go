package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// UnmatchedRoute labels requests that reached a 404 or 405 fallback.
const UnmatchedRoute = "unmatched"

// MethodOther is the method label of requests using a non-standard method.
const MethodOther = "other"

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Registerer receives the collectors (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer
	// Namespace prefixes metric names (default: "http")
	Namespace string
	// Subsystem is inserted between namespace and name
	Subsystem string
	// Buckets for the latency histogram (default: prometheus.DefBuckets)
	Buckets []float64
}

// Metrics records request counts and latencies on the default registerer.
func Metrics[C handler.Context]() handler.Middleware[C] {
	return MetricsWithConfig[C](MetricsConfig{})
}

// MetricsWithConfig records two collectors:
//
//	<ns>_requests_total{method,route,status}
//	<ns>_request_duration_seconds{method,route}
//
// The route label is the matched pattern, not the raw path, which keeps label
// cardinality bounded. Collectors already registered under the same names are
// reused, so several routers may share one registry.
func MetricsWithConfig[C handler.Context](cfg MetricsConfig) handler.Middleware[C] {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "http"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	requests := register(cfg.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"}))

	duration := register(cfg.Registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   cfg.Buckets,
	}, []string{"method", "route"}))

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		start := time.Now()
		resp, err := next.Run(ctx)

		method := methodLabel(ctx.Request().Method)
		route := ctx.RoutePattern()
		if route == "" {
			route = UnmatchedRoute
		}

		requests.WithLabelValues(method, route, strconv.Itoa(statusOf(resp, err))).Inc()
		duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return resp, err
	}
}

// methodLabel bounds the method label to the standard methods.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace:
		return method
	}
	return MethodOther
}

// register adds c to reg, returning the existing collector when one with the
// same descriptor is already present.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
