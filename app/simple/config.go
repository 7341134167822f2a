package simple

import (
	"time"

	"github.com/dmitrymomot/dispatch/core/server"
)

// Config is loaded from the environment by NewApp.
type Config struct {
	Server server.Config

	AppName  string `env:"APP_NAME" envDefault:"simple"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MetricsPath    string        `env:"APP_METRICS_PATH" envDefault:"/metrics"`
	HealthPath     string        `env:"APP_HEALTH_PATH" envDefault:"/health"`
	RequestTimeout time.Duration `env:"APP_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxBodySize    int64         `env:"APP_MAX_BODY_SIZE" envDefault:"4194304"`

	// Per-client token bucket. A zero capacity disables rate limiting.
	RateLimitCapacity int           `env:"APP_RATE_LIMIT_CAPACITY" envDefault:"0"`
	RateLimitRefill   int           `env:"APP_RATE_LIMIT_REFILL" envDefault:"10"`
	RateLimitInterval time.Duration `env:"APP_RATE_LIMIT_INTERVAL" envDefault:"1s"`
}
