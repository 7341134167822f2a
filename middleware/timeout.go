package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
)

// contextSetter is implemented by contexts that can swap their
// context.Context, such as router.Context and types embedding it.
type contextSetter interface {
	SetContext(ctx context.Context)
}

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Timeout is the deadline applied to the rest of the chain (default: 30s)
	Timeout time.Duration
	// Message overrides the 504 response message
	Message string
}

// Timeout bounds the rest of the chain with a deadline.
func Timeout[C handler.Context](d time.Duration) handler.Middleware[C] {
	return TimeoutWithConfig[C](TimeoutConfig{Timeout: d})
}

// TimeoutWithConfig attaches a deadline to the request context before running
// the rest of the chain. Links that have not started when it expires are not
// run. A chain that outlives the deadline yields 504 Gateway Timeout, even if
// the handler ignored cancellation and produced a response. The previous
// context is restored on return, so outer links never see the cancelled one
// or values stored by inner links.
//
// The context type must implement SetContext(context.Context); router.Context
// does. TimeoutWithConfig panics with ErrContextNotSettable otherwise.
func TimeoutWithConfig[C handler.Context](cfg TimeoutConfig) handler.Middleware[C] {
	if _, ok := any(*new(C)).(contextSetter); !ok {
		panic(ErrContextNotSettable)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	timeoutErr := response.ErrGatewayTimeout
	if cfg.Message != "" {
		timeoutErr = timeoutErr.WithMessage(cfg.Message)
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		setter := any(ctx).(contextSetter)
		parent := ctx.Request().Context()

		tctx, cancel := context.WithTimeout(parent, cfg.Timeout)
		defer cancel()

		setter.SetContext(tctx)
		defer setter.SetContext(parent)

		resp, err := next.Run(ctx)
		if errors.Is(tctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			return nil, timeoutErr.WithError(context.DeadlineExceeded)
		}
		return resp, err
	}
}
