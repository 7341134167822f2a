package middleware

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
)

// Common size constants for convenience
const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 4MB)
	MaxSize int64

	// ContentTypeLimit allows setting different limits per content type
	// Example: {"application/json": 1 * MB, "multipart/form-data": 10 * MB}
	ContentTypeLimit map[string]int64

	// DisableContentLengthCheck skips the Content-Length header check
	// and only enforces the limit during body reading
	DisableContentLengthCheck bool
}

// BodyLimit creates a body limit middleware with default configuration (4MB limit).
func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

// BodyLimitWithSize creates a body limit middleware with a specified size limit.
func BodyLimitWithSize[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{
		MaxSize: maxSize,
	})
}

// BodyLimitWithConfig restricts the size of incoming request bodies.
// A declared Content-Length above the limit fails with 413 before the rest of
// the chain runs. Otherwise the body is wrapped so that reading past the
// limit fails with *http.MaxBytesError, which the context's body helpers
// and response.ToHTTPError report as 413.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 4 * MB
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		req := ctx.Request()

		maxSize := cfg.MaxSize
		if cfg.ContentTypeLimit != nil {
			if mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err == nil {
				if limit, ok := cfg.ContentTypeLimit[mediaType]; ok {
					maxSize = limit
				}
			}
		}

		if !cfg.DisableContentLengthCheck && req.ContentLength > maxSize {
			return nil, response.ErrRequestEntityTooLarge.
				WithMessage(fmt.Sprintf("Request body too large. Size: %s, Maximum allowed: %s",
					formatBytes(req.ContentLength), formatBytes(maxSize))).
				WithDetails(map[string]any{
					"limit": maxSize,
					"size":  req.ContentLength,
				})
		}

		if req.Body != nil && req.Body != http.NoBody {
			req.Body = http.MaxBytesReader(nil, req.Body, maxSize)
		}

		return next.Run(ctx)
	}
}

// formatBytes formats bytes into a human-readable string
func formatBytes(bytes int64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
