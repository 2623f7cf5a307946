// Package app wires configuration into a runnable proxy.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wpbr/reviewproxy/internal/config"
	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/internal/proxy"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	"github.com/wpbr/reviewproxy/pkg/cache"
	"github.com/wpbr/reviewproxy/pkg/httpserver"
	"github.com/wpbr/reviewproxy/pkg/logger"
	"github.com/wpbr/reviewproxy/pkg/pg"
	"github.com/wpbr/reviewproxy/pkg/redis"
)

// App owns every long-lived dependency of the server.
type App struct {
	Handler  http.Handler
	Client   *trustpilot.Client
	Registry *prometheus.Registry

	closers []func()
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	store    cache.Store
	provider license.Provider
	registry *prometheus.Registry
}

// WithStore replaces the store selected by CACHE_DRIVER.
func WithStore(s cache.Store) Option {
	return func(o *options) { o.store = s }
}

// WithProvider replaces the provider selected by LICENSE_PROVIDER.
func WithProvider(p license.Provider) Option {
	return func(o *options) { o.provider = p }
}

func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// New connects the configured backends and builds the router. On error every
// connection opened so far is closed.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts ...Option) (_ *App, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if log == nil {
		log = logger.Discard()
	}

	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.Registry = reg

	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	var checks []httpserver.Check

	store := o.store
	if store == nil {
		var check *httpserver.Check
		store, check, err = a.openStore(ctx, cfg, m, log)
		if err != nil {
			return nil, err
		}
		if check != nil {
			checks = append(checks, *check)
		}
	}

	provider := o.provider
	if provider == nil {
		var check *httpserver.Check
		provider, check, err = a.openProvider(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if check != nil {
			checks = append(checks, *check)
		}
	}

	a.Client = trustpilot.New(cfg.Trustpilot.APIKey,
		trustpilot.WithBaseURL(cfg.Trustpilot.BaseURL),
		trustpilot.WithTimeout(cfg.Trustpilot.Timeout),
		trustpilot.WithLocale(cfg.Trustpilot.Locale),
		trustpilot.WithMetrics(m),
		trustpilot.WithLogger(log),
	)

	gate := license.NewGate(provider, store,
		license.WithTTL(cfg.License.TTL),
		license.WithMetrics(m),
		license.WithLogger(log),
	)
	agg := reviews.NewAggregator(a.Client, store, append(cfg.AggregatorOptions(),
		reviews.WithMetrics(m),
		reviews.WithLogger(log),
	)...)

	a.Handler = proxy.Router(proxy.RouterOptions{
		Service:          proxy.NewService(gate, agg, proxy.WithLogger(log)),
		Status:           a.Client,
		Gatherer:         reg,
		Checks:           checks,
		ReadinessTimeout: cfg.ReadinessTimeout,
		Logger:           log,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config, m *metrics.Metrics, log *slog.Logger) (cache.Store, *httpserver.Check, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", logger.Error(err))
			}
		})
		return redis.NewStore(client, redis.WithKeyPrefix(cfg.Redis.KeyPrefix)),
			&httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)}, nil

	default:
		store := cache.NewMemoryStore(cfg.Cache.Capacity, cache.WithEvictCallback(m.ObserveCacheEviction))
		if cfg.Cache.JanitorInterval > 0 {
			janitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			store.StartJanitor(janitorCtx, cfg.Cache.JanitorInterval)
			a.onClose(cancel)
		}
		return store, nil, nil
	}
}

func (a *App) openProvider(ctx context.Context, cfg config.Config, log *slog.Logger) (license.Provider, *httpserver.Check, error) {
	switch cfg.License.Provider {
	case config.ProviderPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(pool.Close)
		return license.NewPostgresProvider(pool, nil),
			&httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)}, nil

	case config.ProviderEDD:
		return license.NewEDDProvider(cfg.License.EDDStore,
			license.WithEDDItemID(cfg.License.EDDItemID),
			license.WithEDDSiteURL(cfg.License.EDDSiteURL),
			license.WithEDDTimeout(cfg.Trustpilot.Timeout),
		), nil, nil

	case config.ProviderStatic:
		p, err := license.ParseStaticKeys(cfg.License.StaticKeys)
		if err != nil {
			return nil, nil, err
		}
		if len(p) == 0 {
			log.WarnContext(ctx, "static license provider has no keys; every request will be denied")
		}
		return p, nil, nil

	default:
		return nil, nil, errors.Join(config.ErrInvalidConfig, errors.New("unknown license provider "+cfg.License.Provider))
	}
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of opening. It is safe to
// call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
