package middleware

import "errors"

var (
	ErrLimiterRequired    = errors.New("rate limit middleware requires a limiter")
	ErrContextNotSettable = errors.New("context type does not implement SetContext")
)
