// Package config loads environment configuration into structs tagged for
// caarlos0/env. A .env file in the working directory is applied once before
// the first parse without overriding variables that are already set.
//
//	type Config struct {
//		Server server.Config
//		Env    string `env:"APP_ENV" envDefault:"development"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Results are cached per type, so loading the same type twice returns the
// first result even if the environment changed in between. MustLoad panics
// instead of returning an error and suits main packages.
package config
