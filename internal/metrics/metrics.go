// Package metrics owns the Prometheus collectors of the proxy.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reviewproxy"

// Metrics groups the collectors. A nil *Metrics is valid and records
// nothing, so components can take it as an optional dependency.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	cacheEvictions   *prometheus.CounterVec
	licenseChecks    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors that are
// already registered, for example by a previous New on the same registry,
// are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.upstreamRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream reviews API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"}))
	if err != nil {
		return nil, err
	}

	m.upstreamDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of upstream reviews API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"}))
	if err != nil {
		return nil, err
	}

	m.cacheLookups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache reads by namespace and result.",
	}, []string{"namespace", "result"}))
	if err != nil {
		return nil, err
	}

	m.cacheEvictions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_evictions_total",
		Help:      "Entries dropped from the in-process cache by capacity or expiry.",
	}, []string{"namespace"}))
	if err != nil {
		return nil, err
	}

	m.licenseChecks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_checks_total",
		Help:      "License validations by resulting status and where it came from.",
	}, []string{"status", "source"}))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("failed to register metric: %w", err)
	}
	return c, nil
}

// ObserveUpstream records one upstream call. outcome is "ok", "transport" or
// "decode".
func (m *Metrics) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCacheLookup records a namespace read. It matches the
// cache.LookupObserver signature.
func (m *Metrics) ObserveCacheLookup(ns string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(ns, result).Inc()
}

// ObserveCacheEviction records an entry leaving the in-process store. The
// namespace label is the key prefix before the first colon. It matches the
// cache.WithEvictCallback signature.
func (m *Metrics) ObserveCacheEviction(key string) {
	if m == nil {
		return
	}
	ns, _, found := strings.Cut(key, ":")
	if !found {
		ns = "none"
	}
	m.cacheEvictions.WithLabelValues(ns).Inc()
}

// ObserveLicenseCheck records a validation; source is "cache" or "provider".
func (m *Metrics) ObserveLicenseCheck(status, source string) {
	if m == nil {
		return
	}
	m.licenseChecks.WithLabelValues(status, source).Inc()
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
