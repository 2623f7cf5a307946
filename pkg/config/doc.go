// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more dotenv files into the process environment.
//   - Parse fills any struct from the environment using `env` field tags.
//   - Load does the same but caches each configuration type after its first
//     successful parse, so packages can ask for their config independently.
//   - MustLoad and MustLoadEnv panic instead of returning an error.
//
// # Usage
//
//	type RedisConfig struct {
//	    URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Use Parse when the environment may change between calls, for instance in
// tests driven by t.Setenv. ResetCache clears the Load cache.
package config
