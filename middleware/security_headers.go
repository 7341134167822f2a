package middleware

import (
	"maps"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// SecurityHeadersConfig configures the security headers middleware.
// It provides fine-grained control over HTTP security headers.
type SecurityHeadersConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// ContentTypeOptions controls X-Content-Type-Options header
	ContentTypeOptions string

	// FrameOptions controls X-Frame-Options header
	FrameOptions string

	// XSSProtection controls X-XSS-Protection header
	XSSProtection string

	// StrictTransportSecurity controls Strict-Transport-Security header
	StrictTransportSecurity string

	// ContentSecurityPolicy controls Content-Security-Policy header
	ContentSecurityPolicy string

	// ReferrerPolicy controls Referrer-Policy header
	ReferrerPolicy string

	// PermissionsPolicy controls Permissions-Policy header
	PermissionsPolicy string

	// CrossOriginOpenerPolicy controls Cross-Origin-Opener-Policy header
	CrossOriginOpenerPolicy string

	// CrossOriginEmbedderPolicy controls Cross-Origin-Embedder-Policy header
	CrossOriginEmbedderPolicy string

	// CrossOriginResourcePolicy controls Cross-Origin-Resource-Policy header
	CrossOriginResourcePolicy string

	// CustomHeaders allows adding additional custom security headers
	CustomHeaders map[string]string

	// IsDevelopment disables HSTS and relaxes some policies for development
	IsDevelopment bool
}

// Predefined security configurations.
var (
	// StrictSecurity provides maximum security with strict policies.
	// Use this for applications requiring highest security standards.
	StrictSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "DENY",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:     "default-src 'none'; script-src 'self'; style-src 'self'; img-src 'self'; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		ReferrerPolicy:            "no-referrer",
		PermissionsPolicy:         "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginResourcePolicy: "same-origin",
	}

	// BalancedSecurity provides good security with compatibility.
	// Use this for most web applications.
	BalancedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "SAMEORIGIN",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionsPolicy:         "geolocation=(), microphone=(), camera=()",
		CrossOriginOpenerPolicy:   "same-origin-allow-popups",
		CrossOriginEmbedderPolicy: "",
		CrossOriginResourcePolicy: "cross-origin",
	}

	// RelaxedSecurity provides basic security for maximum compatibility.
	// Use this only when strict policies break functionality.
	RelaxedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "",
		ContentSecurityPolicy:     "",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionsPolicy:         "",
		CrossOriginOpenerPolicy:   "",
		CrossOriginEmbedderPolicy: "",
		CrossOriginResourcePolicy: "",
	}

	// DevelopmentSecurity provides minimal security for local development.
	// WARNING: Never use in production.
	DevelopmentSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		XSSProtection:      "1; mode=block",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	}
)

// SecurityHeaders applies BalancedSecurity to every successful response.
func SecurityHeaders[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](BalancedSecurity)
}

// SecurityHeadersStrict applies StrictSecurity. It blocks inline scripts,
// framing and cross-origin embedding, so third-party widgets may break.
func SecurityHeadersStrict[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](StrictSecurity)
}

// SecurityHeadersRelaxed applies RelaxedSecurity.
func SecurityHeadersRelaxed[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](RelaxedSecurity)
}

// SecurityHeadersWithConfig sets the configured headers on the response
// returned by the rest of the chain. Empty fields are omitted and
// IsDevelopment drops Strict-Transport-Security.
//
//	cfg := middleware.StrictSecurity
//	cfg.Skip = func(ctx handler.Context) bool {
//		return strings.HasPrefix(ctx.Request().URL.Path, "/embed/")
//	}
//	r.Use(middleware.SecurityHeadersWithConfig[*router.Context](cfg))
func SecurityHeadersWithConfig[C handler.Context](cfg SecurityHeadersConfig) handler.Middleware[C] {
	if cfg.IsDevelopment {
		cfg.StrictTransportSecurity = ""
	}

	pairs := [...][2]string{
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Strict-Transport-Security", cfg.StrictTransportSecurity},
		{"Content-Security-Policy", cfg.ContentSecurityPolicy},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		{"Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy},
		{"Cross-Origin-Embedder-Policy", cfg.CrossOriginEmbedderPolicy},
		{"Cross-Origin-Resource-Policy", cfg.CrossOriginResourcePolicy},
	}

	headers := make(map[string]string, len(pairs)+len(cfg.CustomHeaders))
	for _, p := range pairs {
		if p[1] != "" {
			headers[p[0]] = p[1]
		}
	}
	maps.Copy(headers, cfg.CustomHeaders)

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		resp, err := next.Run(ctx)
		if resp != nil {
			h := resp.Header()
			for key, value := range headers {
				h.Set(key, value)
			}
		}
		return resp, err
	}
}
