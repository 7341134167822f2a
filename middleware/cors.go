package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// DefaultCORSMaxAge is the preflight cache lifetime used when CORSConfig.MaxAge is zero.
const DefaultCORSMaxAge = 86400

// CORSConfig defines configuration options for CORS middleware.
// It provides fine-grained control over Cross-Origin Resource Sharing policies.
type CORSConfig struct {
	// Skip allows bypassing CORS handling for specific requests
	Skip func(ctx handler.Context) bool

	// AllowOrigins specifies allowed origins. Use "*" for all origins.
	// If empty, defaults to allowing all origins ("*")
	AllowOrigins []string

	// AllowMethods specifies allowed HTTP methods.
	// If empty, defaults to GET, HEAD, PUT, PATCH, POST, DELETE
	AllowMethods []string

	// AllowHeaders specifies allowed request headers.
	// If empty, defaults to common headers including Authorization and Content-Type
	AllowHeaders []string

	// ExposeHeaders specifies which headers are exposed to the client
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization headers)
	// are allowed. Cannot be used with wildcard origins for security reasons
	AllowCredentials bool

	// MaxAge specifies how long preflight requests can be cached (in seconds).
	// Zero means DefaultCORSMaxAge, a negative value omits the header.
	MaxAge int

	// AllowOriginFunc provides custom origin validation logic.
	// Takes precedence over AllowOrigins when set.
	// Returns the allowed origin value and whether the origin is allowed
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS returns a CORS middleware with default configuration: all origins,
// common methods and headers, and a one-day preflight cache.
//
// Production applications should list their origins explicitly:
//
//	r.Use(middleware.CORSWithConfig[*MyContext](middleware.CORSConfig{
//		AllowOrigins:     []string{"https://myapp.com", "https://api.myapp.com"},
//		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
//		AllowHeaders:     []string{"Content-Type", "Authorization"},
//		AllowCredentials: true,
//	}))
func CORS[C handler.Context]() handler.Middleware[C] {
	return CORSWithConfig[C](CORSConfig{})
}

// CORSWithConfig returns a CORS middleware with custom configuration.
//
// Preflight requests (OPTIONS carrying Access-Control-Request-Method) are
// answered directly: 200 with the allow headers when the origin and method
// are accepted, 401 Unauthorized otherwise. The rest of the chain never runs
// for a preflight, so the middleware belongs in the root scope where it sees
// requests for every path.
//
// Other requests run the chain; responses to accepted origins get
// Access-Control-Allow-Origin and related headers. Errors pass through
// unchanged, place CatchErrors inside CORS to decorate error responses too.
//
// Credentials are never allowed together with the "*" origin.
func CORSWithConfig[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}

	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultCORSMaxAge
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")

	allowOrigins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOrigins[origin] = true
	}

	// Origin validation priority: custom function > wildcard/empty > explicit list
	resolve := func(origin string) (string, bool) {
		switch {
		case cfg.AllowOriginFunc != nil:
			return cfg.AllowOriginFunc(origin)
		case len(allowOrigins) == 0 || allowOrigins["*"]:
			return "*", true
		case allowOrigins[origin]:
			return origin, true
		}
		return "", false
	}

	decorate := func(h http.Header, allowedOrigin string) {
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		if cfg.AllowCredentials && allowedOrigin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}
		h.Add("Vary", "Origin")
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		req := ctx.Request()
		allowedOrigin, allowed := resolve(req.Header.Get("Origin"))

		if requestMethod := req.Header.Get("Access-Control-Request-Method"); req.Method == http.MethodOptions && requestMethod != "" {
			if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
				return handler.NewResponse(http.StatusUnauthorized), nil
			}

			resp := handler.NewResponse(http.StatusOK)
			h := resp.Header()
			decorate(h, allowedOrigin)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			return resp, nil
		}

		resp, err := next.Run(ctx)
		if resp != nil && allowed {
			decorate(resp.Header(), allowedOrigin)
		}
		return resp, err
	}
}

// AllowOriginWildcard returns an AllowOriginFunc that allows any origin except empty strings.
// This provides more flexibility than static wildcard ("*") as it returns the actual origin
// value, enabling proper credential handling while still allowing all origins.
func AllowOriginWildcard() func(origin string) (string, bool) {
	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		return origin, true
	}
}

// AllowOriginSubdomain returns an AllowOriginFunc that allows requests from the specified
// domain and all its subdomains. Handles domains with and without ports correctly.
// The domain parameter should be provided without protocol (e.g., "example.com").
// Supports both exact matches and subdomain matches (e.g., "api.example.com").
func AllowOriginSubdomain(domain string) func(origin string) (string, bool) {
	domain = strings.TrimPrefix(domain, "*.")
	domain = strings.TrimPrefix(domain, ".")
	domain = strings.ToLower(domain)
	domainWithDot := "." + domain

	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}

		host := strings.ToLower(u.Host)

		// Exact domain match (e.g., "example.com")
		if host == domain {
			return origin, true
		}

		// Subdomain match (e.g., "api.example.com" matches ".example.com")
		if strings.HasSuffix(host, domainWithDot) {
			return origin, true
		}

		// Handle hosts with ports (e.g., "example.com:8080" or "api.example.com:3000")
		portIndex := strings.LastIndex(host, ":")
		if portIndex > 0 {
			hostWithoutPort := host[:portIndex]
			if hostWithoutPort == domain || strings.HasSuffix(hostWithoutPort, domainWithDot) {
				return origin, true
			}
		}

		return "", false
	}
}
