package simple

import (
	"log/slog"

	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/router"
	"github.com/dmitrymomot/dispatch/core/state"
	"github.com/dmitrymomot/dispatch/middleware"
)

// Context is the request context handed to the application's handlers.
type Context struct {
	*router.Context
}

func newContext(c *router.Context) *Context {
	return &Context{Context: c}
}

// RequestID returns the ID assigned by the request ID middleware.
func (c *Context) RequestID() string {
	id, _ := middleware.GetRequestID(c)
	return id
}

// ClientIP returns the resolved client address.
func (c *Context) ClientIP() string {
	ip, _ := middleware.GetClientIP(c)
	return ip
}

// Logger returns the application logger with the request ID attached.
func (c *Context) Logger() *slog.Logger {
	log, err := state.Get[*slog.Logger](c.State())
	if err != nil {
		log = slog.Default()
	}
	if id := c.RequestID(); id != "" {
		return log.With(logger.RequestID(id))
	}
	return log
}

// Config returns the application configuration.
func (c *Context) Config() Config {
	return state.MustGet[Config](c.State())
}
