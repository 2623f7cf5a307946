// Package config holds the process configuration of the proxy.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	pkgconfig "github.com/wpbr/reviewproxy/pkg/config"
	"github.com/wpbr/reviewproxy/pkg/httpserver"
	"github.com/wpbr/reviewproxy/pkg/pg"
	"github.com/wpbr/reviewproxy/pkg/redis"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"

	ProviderStatic   = "static"
	ProviderPostgres = "postgres"
	ProviderEDD      = "edd"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type App struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"reviewproxy"`
	LogLevel string `env:"LOG_LEVEL"`
}

type Trustpilot struct {
	APIKey          string        `env:"TRUSTPILOT_API_KEY"`
	BaseURL         string        `env:"TRUSTPILOT_BASE_URL" envDefault:"https://api.trustpilot.com/v1"`
	Timeout         time.Duration `env:"TRUSTPILOT_TIMEOUT" envDefault:"10s"`
	Locale          string        `env:"TRUSTPILOT_LOCALE" envDefault:"en_US"`
	SequentialFetch bool          `env:"TRUSTPILOT_SEQUENTIAL_FETCH" envDefault:"false"`
}

// Cache configures the response cache. Capacity bounds the memory driver;
// each license token holds three entries, so the default fits a little over
// 3300 tokens.
type Cache struct {
	Driver          string        `env:"CACHE_DRIVER" envDefault:"memory"`
	Capacity        int           `env:"CACHE_CAPACITY" envDefault:"10000"`
	TTL             time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	JanitorInterval time.Duration `env:"CACHE_JANITOR_INTERVAL" envDefault:"10m"`
}

type License struct {
	Provider   string        `env:"LICENSE_PROVIDER" envDefault:"static"`
	TTL        time.Duration `env:"LICENSE_TTL" envDefault:"1h"`
	StaticKeys []string      `env:"LICENSE_STATIC_KEYS" envSeparator:","`
	EDDStore   string        `env:"EDD_STORE_URL"`
	EDDItemID  string        `env:"EDD_ITEM_ID"`
	EDDSiteURL string        `env:"EDD_SITE_URL"`
}

// Config is the full process configuration.
type Config struct {
	App        App
	HTTP       httpserver.Config
	Trustpilot Trustpilot
	Cache      Cache
	License    License
	Redis      redis.Config
	Postgres   pg.Config

	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"3s"`
}

// Load reads and validates the configuration. The result is cached for the
// process.
func Load() (Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse reads and validates the configuration without caching.
func Parse() (Config, error) {
	var cfg Config
	if err := pkgconfig.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that defaults cannot cover.
func (c Config) Validate() error {
	var errs []error
	if c.Trustpilot.APIKey == "" {
		errs = append(errs, errors.New("TRUSTPILOT_API_KEY is required"))
	}
	if c.Trustpilot.Locale != "" {
		if _, ok := trustpilot.CanonicalLocale(c.Trustpilot.Locale); !ok {
			errs = append(errs, fmt.Errorf("TRUSTPILOT_LOCALE %q is not a valid locale", c.Trustpilot.Locale))
		}
	}

	switch c.Cache.Driver {
	case CacheMemory:
		if c.Cache.Capacity <= 0 {
			errs = append(errs, errors.New("CACHE_CAPACITY must be positive"))
		}
	case CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("CACHE_DRIVER %q is not one of memory, redis", c.Cache.Driver))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.License.TTL <= 0 {
		errs = append(errs, errors.New("LICENSE_TTL must be positive"))
	}

	switch c.License.Provider {
	case ProviderStatic:
		if _, err := license.ParseStaticKeys(c.License.StaticKeys); err != nil {
			errs = append(errs, err)
		}
	case ProviderPostgres:
		if c.Postgres.ConnectionString == "" {
			errs = append(errs, errors.New("PG_CONN_URL is required by the postgres license provider"))
		}
	case ProviderEDD:
		if c.License.EDDStore == "" {
			errs = append(errs, errors.New("EDD_STORE_URL is required by the edd license provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("LICENSE_PROVIDER %q is not one of static, postgres, edd", c.License.Provider))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// AggregatorOptions translates the settings into reviews options.
func (c Config) AggregatorOptions() []reviews.Option {
	opts := []reviews.Option{reviews.WithTTL(c.Cache.TTL)}
	if c.Trustpilot.SequentialFetch {
		opts = append(opts, reviews.WithSequentialFetch())
	}
	return opts
}
