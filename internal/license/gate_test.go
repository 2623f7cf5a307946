package license_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/pkg/cache"
)

type countingProvider struct {
	calls  atomic.Int32
	status license.Status
	err    error
}

func (p *countingProvider) LicenseStatus(context.Context, string) (license.Status, error) {
	p.calls.Add(1)
	return p.status, p.err
}

func TestGate_Validate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("one provider call per ttl window", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		store := cache.NewMemoryStore(100, cache.WithClock(clock))
		provider := &countingProvider{status: license.StatusActive}
		gate := license.NewGate(provider, store)

		assert.Equal(t, license.StatusActive, gate.Validate(ctx, "tok"))
		assert.Equal(t, license.StatusActive, gate.Validate(ctx, "tok"))
		assert.Equal(t, int32(1), provider.calls.Load())

		clock.Advance(time.Hour + time.Second)
		assert.Equal(t, license.StatusActive, gate.Validate(ctx, "tok"))
		assert.Equal(t, int32(2), provider.calls.Load())
	})

	t.Run("tokens are cached independently", func(t *testing.T) {
		t.Parallel()
		provider := &countingProvider{status: license.StatusInactive}
		gate := license.NewGate(provider, cache.NewMemoryStore(100))

		gate.Validate(ctx, "a")
		gate.Validate(ctx, "b")
		gate.Validate(ctx, "a")
		assert.Equal(t, int32(2), provider.calls.Load())
	})

	t.Run("provider failure is unknown and cached", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		provider := &countingProvider{status: license.StatusActive, err: errors.New("boom")}
		gate := license.NewGate(provider, store)

		assert.Equal(t, license.StatusUnknown, gate.Validate(ctx, "tok"))
		assert.Equal(t, license.StatusUnknown, gate.Validate(ctx, "tok"))
		assert.Equal(t, int32(1), provider.calls.Load())

		raw, found, err := store.Get(ctx, "license:tok")
		require.NoError(t, err)
		require.True(t, found)
		assert.JSONEq(t, `"unknown"`, string(raw))
	})

	t.Run("custom ttl", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		store := cache.NewMemoryStore(100, cache.WithClock(clock))
		provider := &countingProvider{status: license.StatusActive}
		gate := license.NewGate(provider, store, license.WithTTL(time.Minute))

		gate.Validate(ctx, "tok")
		clock.Advance(2 * time.Minute)
		gate.Validate(ctx, "tok")
		assert.Equal(t, int32(2), provider.calls.Load())
	})
}

func TestGate_Authorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	provider := license.StaticProvider{
		"good":    license.StatusActive,
		"off":     license.StatusInactive,
		"unclear": license.StatusUnknown,
	}
	gate := license.NewGate(provider, cache.NewMemoryStore(100))

	assert.NoError(t, gate.Authorize(ctx, "good"))
	assert.ErrorIs(t, gate.Authorize(ctx, ""), license.ErrMissingLicense)
	assert.ErrorIs(t, gate.Authorize(ctx, "off"), license.ErrInactive)
	assert.ErrorIs(t, gate.Authorize(ctx, "unclear"), license.ErrInactive)
	assert.ErrorIs(t, gate.Authorize(ctx, "never-issued"), license.ErrInactive)
}

func TestGate_Metrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	gate := license.NewGate(license.StaticProvider{"tok": license.StatusActive},
		cache.NewMemoryStore(100), license.WithMetrics(m))
	gate.Validate(ctx, "tok")
	gate.Validate(ctx, "tok")

	count, err := testutil.GatherAndCount(reg, "reviewproxy_license_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one provider and one cache series")

	count, err = testutil.GatherAndCount(reg, "reviewproxy_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one miss and one hit series")
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, license.StatusActive, license.ParseStatus(" Active "))
	assert.Equal(t, license.StatusInactive, license.ParseStatus("inactive"))
	assert.Equal(t, license.StatusUnknown, license.ParseStatus("expired"))
	assert.Equal(t, license.StatusUnknown, license.ParseStatus(""))
}

func TestProviderFunc(t *testing.T) {
	t.Parallel()
	var p license.Provider = license.ProviderFunc(func(_ context.Context, token string) (license.Status, error) {
		if token == "x" {
			return license.StatusActive, nil
		}
		return license.StatusInactive, nil
	})
	s, err := p.LicenseStatus(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, license.StatusActive, s)
}
