package license

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/pkg/cache"
	"github.com/wpbr/reviewproxy/pkg/logger"
)

// DefaultTTL is how long a validation result is reused.
const DefaultTTL = time.Hour

// Gate validates tokens against a Provider and caches each answer under
// "license:{token}".
type Gate struct {
	provider Provider
	statuses cache.Namespace[Status]
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*gateOptions)

type gateOptions struct {
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
}

func WithTTL(d time.Duration) GateOption {
	return func(o *gateOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) GateOption {
	return func(o *gateOptions) { o.metrics = m }
}

func WithLogger(l *slog.Logger) GateOption {
	return func(o *gateOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewGate builds a Gate backed by store.
func NewGate(provider Provider, store cache.Store, opts ...GateOption) *Gate {
	o := &gateOptions{ttl: DefaultTTL, log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return &Gate{
		provider: provider,
		statuses: cache.NewNamespace[Status](store, "license", o.ttl,
			cache.WithLookupObserver(o.metrics.ObserveCacheLookup)),
		metrics: o.metrics,
		log:     o.log,
	}
}

// Validate returns the status of token. A cached answer is returned while
// it is fresh; otherwise the provider is asked and its answer cached. A
// provider failure yields StatusUnknown, which is cached like any other
// answer.
func (g *Gate) Validate(ctx context.Context, token string) Status {
	status, found, err := g.statuses.Get(ctx, token)
	if err != nil {
		g.log.WarnContext(ctx, "license cache read failed",
			logger.Component("license"), logger.License(token), logger.Error(err))
	}
	if found {
		g.metrics.ObserveLicenseCheck(status.String(), "cache")
		return status
	}

	status, err = g.provider.LicenseStatus(ctx, token)
	if err != nil {
		g.log.ErrorContext(ctx, "license provider failed",
			logger.Component("license"), logger.License(token), logger.Error(err))
		status = StatusUnknown
	}
	if status == "" {
		status = StatusUnknown
	}
	g.metrics.ObserveLicenseCheck(status.String(), "provider")

	if err := g.statuses.Set(ctx, token, status); err != nil {
		g.log.WarnContext(ctx, "license cache write failed",
			logger.Component("license"), logger.License(token), logger.Error(err))
	}
	return status
}

// Authorize returns nil only for a non-empty token whose status is active.
func (g *Gate) Authorize(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingLicense
	}
	if status := g.Validate(ctx, token); status != StatusActive {
		return fmt.Errorf("%w: status %s", ErrInactive, status)
	}
	return nil
}
