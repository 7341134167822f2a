package router

import (
	"log/slog"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/state"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
			m.ownErrorHandler = true
		}
	}
}

// WithMiddleware adds root-scope middleware to the router.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		m.middlewares = append(m.middlewares, middlewares...)
	}
}

// WithContextFactory sets the function that turns the default context into C.
// Custom contexts usually embed *Context:
//
//	type AppContext struct {
//		*router.Context
//		User *User
//	}
//
//	r := router.New[*AppContext](router.WithContextFactory(func(c *router.Context) *AppContext {
//		return &AppContext{Context: c}
//	}))
func WithContextFactory[C handler.Context](f func(*Context) C) Option[C] {
	return func(m *mux[C]) {
		if f != nil {
			m.newContext = f
		}
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithState sets the application state handed to every request context.
func WithState[C handler.Context](st *state.Container) Option[C] {
	return func(m *mux[C]) {
		if st != nil {
			m.state = st
		}
	}
}

// WithNotFoundHandler sets a fallback for requests matching no route.
// It runs through root-scope middleware only.
func WithNotFoundHandler[C handler.Context](h handler.HandlerFunc[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.notFound = h
		}
	}
}

// WithMethodNotAllowedHandler sets a fallback for requests whose path matches
// but whose method does not. It runs through root-scope middleware only and
// the Allow header is added to its response.
func WithMethodNotAllowedHandler[C handler.Context](h handler.HandlerFunc[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.methodNotAllowed = h
		}
	}
}
