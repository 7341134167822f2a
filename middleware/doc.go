// Package middleware provides reusable links for the router's middleware chain:
// request IDs, access logging, CORS, rate limiting, body limits, client IP
// resolution, security headers, Prometheus metrics, OpenTelemetry tracing,
// error catching and timeouts.
//
// Every constructor is generic over the request context and returns a
// handler.Middleware. Most come in two flavours, a default constructor and a
// WithConfig variant taking a config struct whose zero fields mean defaults.
// All configs accept a Skip function.
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//		middleware.Metrics[*router.Context](),
//		middleware.Tracing[*router.Context](),
//		middleware.CORS[*router.Context](),
//		middleware.CatchErrors[*router.Context](),
//	)
//
// # Responses and errors
//
// A middleware receives the rest of the chain as a *handler.Next and gets back
// either a response or an error. Header-setting middleware (RequestID, CORS,
// ClientIP, SecurityHeaders, RateLimit) decorate responses only; errors travel
// outward untouched until the router's error handler renders them. Place
// CatchErrors inside those middleware when error responses should carry their
// headers as well.
//
// Middleware registered on the root router also runs for requests that match
// no route, which is what lets CORS answer preflight requests for any path
// and lets Logging and Metrics record 404 and 405 responses. Such requests
// have an empty RoutePattern; Metrics and Tracing label them UnmatchedRoute.
//
// # Context values
//
// RequestID and ClientIP store their values in the request context. Read them
// with GetRequestID and GetClientIP. Timeout and Tracing replace the request
// context through SetContext, which router.Context implements, and restore the
// previous one when the rest of the chain returns. Custom context types that
// embed *router.Context inherit it.
package middleware
