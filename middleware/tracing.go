package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// TracerName is the instrumentation scope used for server spans.
const TracerName = "github.com/dmitrymomot/dispatch/middleware"

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// TracerProvider creates the tracer (default: otel.GetTracerProvider())
	TracerProvider trace.TracerProvider
	// Propagator extracts the remote parent from request headers
	// (default: otel.GetTextMapPropagator())
	Propagator propagation.TextMapPropagator
	// SpanName names the span (default: "METHOD route")
	SpanName func(ctx handler.Context) string
}

// Tracing starts a server span per request using the global provider.
func Tracing[C handler.Context]() handler.Middleware[C] {
	return TracingWithConfig[C](TracingConfig{})
}

// TracingWithConfig starts a server span for each request, continuing any
// remote trace found in the headers. The span context replaces the request
// context so handlers and inner middleware create child spans; the previous
// context is restored once the span ends. Errors are recorded on the span and
// 5xx results mark it failed.
//
// The context type must implement SetContext(context.Context); router.Context
// does. TracingWithConfig panics with ErrContextNotSettable otherwise.
func TracingWithConfig[C handler.Context](cfg TracingConfig) handler.Middleware[C] {
	if _, ok := any(*new(C)).(contextSetter); !ok {
		panic(ErrContextNotSettable)
	}

	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.SpanName == nil {
		cfg.SpanName = func(ctx handler.Context) string {
			route := ctx.RoutePattern()
			if route == "" {
				route = UnmatchedRoute
			}
			return ctx.Request().Method + " " + route
		}
	}

	tracer := cfg.TracerProvider.Tracer(TracerName)

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		req := ctx.Request()
		parent := cfg.Propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		}
		if route := ctx.RoutePattern(); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}
		if ua := req.UserAgent(); ua != "" {
			attrs = append(attrs, attribute.String("user_agent.original", ua))
		}

		spanCtx, span := tracer.Start(parent, cfg.SpanName(ctx),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		setter := any(ctx).(contextSetter)
		setter.SetContext(spanCtx)
		defer setter.SetContext(req.Context())

		resp, err := next.Run(ctx)

		status := statusOf(resp, err)
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if err != nil {
			span.RecordError(err)
		}
		if status >= 500 {
			span.SetStatus(codes.Error, "")
		}

		return resp, err
	}
}
