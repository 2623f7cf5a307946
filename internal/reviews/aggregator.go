// Package reviews builds the aggregated business profile served to widgets
// and keeps the per-license association between a searched domain and the
// profile built for it.
package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	"github.com/wpbr/reviewproxy/pkg/async"
	"github.com/wpbr/reviewproxy/pkg/cache"
	"github.com/wpbr/reviewproxy/pkg/logger"
)

// DefaultTTL is the lifetime of the domain and profile entries.
const DefaultTTL = time.Hour

// Upstream is the set of reviews API calls an aggregation makes.
// *trustpilot.Client implements it.
type Upstream interface {
	FindBusiness(ctx context.Context, domain string) (trustpilot.Document, error)
	ProfileInfo(ctx context.Context, id string) (trustpilot.Document, error)
	PublicProfile(ctx context.Context, id string) (trustpilot.Document, error)
	WebLinks(ctx context.Context, id string) (trustpilot.Document, error)
	Logo(ctx context.Context, id string) (trustpilot.Document, error)
	Reviews(ctx context.Context, id string) (trustpilot.Document, error)
}

// Aggregator holds no mutable state of its own; everything it remembers
// lives in the cache store.
type Aggregator struct {
	upstream   Upstream
	domains    cache.Namespace[string]
	profiles   cache.Namespace[Profile]
	sequential bool
	log        *slog.Logger
}

// Option configures an Aggregator.
type Option func(*options)

type options struct {
	ttl        time.Duration
	sequential bool
	metrics    *metrics.Metrics
	log        *slog.Logger
}

func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithSequentialFetch issues the id-keyed calls one after another instead
// of concurrently.
func WithSequentialFetch() Option {
	return func(o *options) { o.sequential = true }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func NewAggregator(upstream Upstream, store cache.Store, opts ...Option) *Aggregator {
	o := &options{ttl: DefaultTTL, log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	observe := cache.WithLookupObserver(o.metrics.ObserveCacheLookup)
	return &Aggregator{
		upstream:   upstream,
		domains:    cache.NewNamespace[string](store, "domain", o.ttl, observe),
		profiles:   cache.NewNamespace[Profile](store, "profile", o.ttl, observe),
		sequential: o.sequential,
		log:        o.log,
	}
}

// AggregateByDomain searches domain, loads every document for the business
// found, merges them and caches the domain and profile for token together.
//
// ErrNotFound is returned when the search has no id; nothing is cached.
// A transport or decode failure of any call aborts the aggregation and
// nothing is cached. When the reviews document has no "reviews" field the
// profile is still merged, cached and returned along with ErrNoReviews.
func (a *Aggregator) AggregateByDomain(ctx context.Context, token, domain string) (Profile, error) {
	if domain == "" {
		return nil, ErrInvalidDomain
	}

	identity, err := a.upstream.FindBusiness(ctx, domain)
	if err != nil {
		return nil, err
	}
	id := identity.ID()
	if id == "" {
		return nil, ErrNotFound
	}

	docs, err := a.fetchAll(ctx, id)
	if err != nil {
		return nil, err
	}
	docs[SourceIdentity] = identity

	var softErr error
	if _, ok := docs[SourceReviews]["reviews"]; !ok {
		delete(docs, SourceReviews)
		softErr = ErrNoReviews
	}

	profile := Merge(docs)

	if err := cache.SetPair(ctx, token, a.domains, domain, a.profiles, profile); err != nil {
		a.log.WarnContext(ctx, "failed to cache aggregated profile",
			logger.Component("aggregator"),
			logger.License(token),
			logger.Domain(domain),
			logger.Error(err),
		)
	}
	return profile, softErr
}

// fetchAll loads the five id-keyed documents. The first failure in
// MergeOrder is returned regardless of completion order.
func (a *Aggregator) fetchAll(ctx context.Context, id string) (map[Source]trustpilot.Document, error) {
	calls := []struct {
		src Source
		fn  func(context.Context, string) (trustpilot.Document, error)
	}{
		{SourceReviewProfile, a.upstream.ProfileInfo},
		{SourcePublicProfile, a.upstream.PublicProfile},
		{SourceWebLinks, a.upstream.WebLinks},
		{SourceLogo, a.upstream.Logo},
		{SourceReviews, a.upstream.Reviews},
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	futures := make([]*async.Future[trustpilot.Document], len(calls))
	for i, c := range calls {
		run := func(ctx context.Context) (trustpilot.Document, error) {
			doc, err := c.fn(ctx, id)
			if err != nil {
				cancel()
			}
			return doc, err
		}
		if a.sequential {
			doc, err := run(fetchCtx)
			if err != nil {
				return nil, err
			}
			futures[i] = async.Resolved(doc, nil)
			continue
		}
		futures[i] = async.Go(fetchCtx, run)
	}

	results, err := async.WaitAll(futures...)
	if err != nil {
		return nil, firstCause(err, futures)
	}

	docs := make(map[Source]trustpilot.Document, len(calls)+1)
	for i, c := range calls {
		docs[c.src] = results[i]
	}
	return docs, nil
}

// firstCause prefers a real upstream failure over the context.Canceled
// that sibling calls observe once the first failure cancels them.
func firstCause(err error, futures []*async.Future[trustpilot.Document]) error {
	if !errors.Is(err, context.Canceled) {
		return err
	}
	for _, f := range futures {
		if _, ferr := f.Await(); ferr != nil && !errors.Is(ferr, context.Canceled) {
			return ferr
		}
	}
	return err
}

// AggregateByCachedDomain re-runs AggregateByDomain for the domain last
// cached for token. The cached profile is never reused here.
func (a *Aggregator) AggregateByCachedDomain(ctx context.Context, token string) (Profile, error) {
	domain, found, err := a.CachedDomain(ctx, token)
	if err != nil {
		return nil, err
	}
	if !found || domain == "" {
		return nil, ErrNoCachedDomain
	}
	return a.AggregateByDomain(ctx, token, domain)
}

// CachedDomain returns the domain last aggregated for token.
func (a *Aggregator) CachedDomain(ctx context.Context, token string) (string, bool, error) {
	return a.domains.Get(ctx, token)
}

// CachedProfile returns the profile last aggregated for token.
func (a *Aggregator) CachedProfile(ctx context.Context, token string) (Profile, bool, error) {
	return a.profiles.Get(ctx, token)
}
