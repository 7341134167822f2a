package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> value of that type
	loadMu     sync.Mutex
)

// Load fills cfg from the environment. A .env file in the working directory
// is read once on first use; variables already set take precedence. Each
// type is parsed once and later calls copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil target")
	}

	t := reflect.TypeFor[T]()
	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	parsed, err := env.ParseAs[T]()
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", t, err)
	}

	cache.Store(t, parsed)
	*cfg = parsed
	return nil
}

// MustLoad is like Load but panics on failure. Intended for startup code.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
