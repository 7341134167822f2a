package middleware

import (
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/pkg/clientip"
)

// clientIPContextKey is used as a key for storing client IP in request context.
type clientIPContextKey struct{}

// ClientIPConfig configures the client IP extraction middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// StoreInContext determines whether to store the extracted IP in request context
	StoreInContext bool
	// HeaderName specifies the response header name for the client IP (default: "X-Client-IP")
	HeaderName string
	// StoreInHeader determines whether to include the IP in response headers
	StoreInHeader bool
	// ValidateFunc allows custom validation of the extracted IP address
	ValidateFunc func(ctx handler.Context, ip string) error
}

// ClientIP creates a client IP extraction middleware with default configuration.
// By default, it stores the extracted IP in the request context.
func ClientIP[C handler.Context]() handler.Middleware[C] {
	return ClientIPWithConfig[C](ClientIPConfig{
		StoreInContext: true,
	})
}

// ClientIPWithConfig creates a client IP extraction middleware with custom configuration.
// It resolves the client address with clientip.GetIP and optionally stores it
// in context, validates it (403 on failure) or echoes it in a response header.
func ClientIPWithConfig[C handler.Context](cfg ClientIPConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	// Default to storing in context if no other action is configured
	if !cfg.StoreInContext && !cfg.StoreInHeader && cfg.ValidateFunc == nil {
		cfg.StoreInContext = true
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		ip := clientip.GetIP(ctx.Request())

		if cfg.StoreInContext {
			ctx.SetValue(clientIPContextKey{}, ip)
		}

		if cfg.ValidateFunc != nil {
			if err := cfg.ValidateFunc(ctx, ip); err != nil {
				return nil, response.ErrForbidden.WithError(err)
			}
		}

		resp, err := next.Run(ctx)
		if resp != nil && cfg.StoreInHeader {
			resp.SetHeader(cfg.HeaderName, ip)
		}
		return resp, err
	}
}

// GetClientIP retrieves the client IP address from the request context.
// Returns the IP address and a boolean indicating whether it was found.
func GetClientIP(ctx handler.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok
}
