package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/response"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Readiness answers "READY" when every check passes and 503 Service
// Unavailable on the first failure. A nil log discards failures.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(ctx C) (*handler.Response, error) {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				return nil, response.ErrServiceUnavailable.WithError(err)
			}
		}
		return response.String("READY"), nil
	}
}
