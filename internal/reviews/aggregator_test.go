package reviews_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	"github.com/wpbr/reviewproxy/pkg/cache"
)

func TestAggregateByDomain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("merges all sources and caches domain with profile", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		store := cache.NewMemoryStore(100, cache.WithClock(clock))
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, store)

		profile, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		require.NoError(t, err)

		assert.Equal(t, "bu-1", profile["id"])
		assert.Equal(t, "Acme", profile["name"])
		assert.Equal(t, 4.5, profile["trustScore"])
		assert.Equal(t, "https://cdn.example/logo.png", profile["logoUrl"])
		assert.NotNil(t, profile["profileUrl"])
		assert.NotNil(t, profile["numberOfReviews"])
		assert.Len(t, profile["reviews"], 1)
		assert.Equal(t, int32(6), up.calls.Load())

		domain, found, err := agg.CachedDomain(ctx, "tok")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "acme.com", domain)

		cached, found, err := agg.CachedProfile(ctx, "tok")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, profile["id"], cached["id"])
		assert.Equal(t, profile["trustScore"], cached["trustScore"])

		de, ok := store.ExpiresAt("domain:tok")
		require.True(t, ok)
		pe, ok := store.ExpiresAt("profile:tok")
		require.True(t, ok)
		assert.Equal(t, de, pe)
		assert.Equal(t, clock.Now().Add(time.Hour), de)
	})

	t.Run("missing id is not found and caches nothing", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		up := newFakeUpstream().set("find", trustpilot.Document{"name": "nobody"})
		agg := reviews.NewAggregator(up, store)

		profile, err := agg.AggregateByDomain(ctx, "tok", "nobody.com")
		assert.ErrorIs(t, err, reviews.ErrNotFound)
		assert.Nil(t, profile)
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, []string{"find"}, up.endpoints())
	})

	t.Run("empty id is not found", func(t *testing.T) {
		t.Parallel()
		for _, id := range []any{"", "   ", "\t\n", 12345} {
			store := cache.NewMemoryStore(100)
			up := newFakeUpstream().set("find", trustpilot.Document{"id": id})
			agg := reviews.NewAggregator(up, store)

			_, err := agg.AggregateByDomain(ctx, "tok", "nobody.com")
			assert.ErrorIs(t, err, reviews.ErrNotFound, "id %v", id)
			assert.Equal(t, 0, store.Len())
			assert.Equal(t, []string{"find"}, up.endpoints())
		}
	})

	t.Run("missing reviews field is a soft failure", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		up := newFakeUpstream().set("reviews", trustpilot.Document{"links": []any{}})
		agg := reviews.NewAggregator(up, store)

		profile, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		assert.ErrorIs(t, err, reviews.ErrNoReviews)
		assert.NotErrorIs(t, err, reviews.ErrNotFound)
		require.NotNil(t, profile)
		assert.Equal(t, "bu-1", profile["id"])
		assert.Equal(t, 4.5, profile["trustScore"])
		assert.NotNil(t, profile["numberOfReviews"])
		assert.NotNil(t, profile["profileUrl"])
		assert.NotNil(t, profile["logoUrl"])
		assert.NotContains(t, profile, "reviews")
		assert.NotContains(t, profile, "links")

		cached, found, err := agg.CachedProfile(ctx, "tok")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "bu-1", cached["id"])
	})

	t.Run("search failure aborts", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		up := newFakeUpstream().fail("find", &trustpilot.FetchError{Kind: trustpilot.KindTransport, Endpoint: "find"})
		agg := reviews.NewAggregator(up, store)

		_, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		assert.ErrorIs(t, err, trustpilot.ErrTransport)
		assert.Equal(t, 0, store.Len())
	})

	for _, endpoint := range []string{"profileinfo", "public_profile", "web_links", "logo", "reviews"} {
		t.Run("failure of "+endpoint+" aborts without caching", func(t *testing.T) {
			t.Parallel()
			store := cache.NewMemoryStore(100)
			up := newFakeUpstream().fail(endpoint, &trustpilot.FetchError{Kind: trustpilot.KindDecode, Endpoint: endpoint})
			agg := reviews.NewAggregator(up, store)

			profile, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
			assert.ErrorIs(t, err, trustpilot.ErrDecode)
			assert.Nil(t, profile)
			assert.Equal(t, 0, store.Len())
		})
	}

	t.Run("real failure wins over cancelled siblings", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		up := newFakeUpstream().
			delay("profileinfo", time.Second).
			fail("logo", &trustpilot.FetchError{Kind: trustpilot.KindTransport, Endpoint: "logo"})
		agg := reviews.NewAggregator(up, store)

		_, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		assert.ErrorIs(t, err, trustpilot.ErrTransport)
	})

	t.Run("sequential fetch stops at the first failure", func(t *testing.T) {
		t.Parallel()
		store := cache.NewMemoryStore(100)
		up := newFakeUpstream().fail("public_profile", &trustpilot.FetchError{Kind: trustpilot.KindTransport})
		agg := reviews.NewAggregator(up, store, reviews.WithSequentialFetch())

		_, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		assert.ErrorIs(t, err, trustpilot.ErrTransport)
		assert.Equal(t, []string{"find", "profileinfo", "public_profile"}, up.endpoints())
	})

	t.Run("sequential fetch calls in merge order", func(t *testing.T) {
		t.Parallel()
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, cache.NewMemoryStore(100), reviews.WithSequentialFetch())

		_, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"find", "profileinfo", "public_profile", "web_links", "logo", "reviews"}, up.endpoints())
	})

	t.Run("empty domain", func(t *testing.T) {
		t.Parallel()
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, cache.NewMemoryStore(100))

		_, err := agg.AggregateByDomain(ctx, "tok", "")
		assert.ErrorIs(t, err, reviews.ErrInvalidDomain)
		assert.Zero(t, up.calls.Load())
	})
}

func TestMergePrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	up := newFakeUpstream().
		set("find", trustpilot.Document{"id": "bu-1", "x": "identity"}).
		set("profileinfo", trustpilot.Document{"x": "review_profile"}).
		set("public_profile", trustpilot.Document{"x": "public_profile"}).
		set("web_links", trustpilot.Document{"x": "web_links"}).
		set("logo", trustpilot.Document{"x": "logo"}).
		set("reviews", trustpilot.Document{"x": "reviews", "reviews": []any{}}).
		// Make the lowest-precedence calls finish last.
		delay("web_links", 30*time.Millisecond).
		delay("logo", 20*time.Millisecond).
		delay("public_profile", 40*time.Millisecond).
		delay("profileinfo", 50*time.Millisecond)
	agg := reviews.NewAggregator(up, cache.NewMemoryStore(100))

	profile, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "reviews", profile["x"])
	assert.Equal(t, "bu-1", profile["id"])
}

func TestMerge(t *testing.T) {
	t.Parallel()

	docs := map[reviews.Source]trustpilot.Document{}
	for _, src := range reviews.MergeOrder {
		docs[src] = trustpilot.Document{"x": src.String(), src.String(): true}
	}
	profile := reviews.Merge(docs)
	assert.Equal(t, "reviews", profile["x"])
	for _, src := range reviews.MergeOrder {
		assert.Equal(t, true, profile[src.String()])
	}

	delete(docs, reviews.SourceReviews)
	delete(docs, reviews.SourceLogo)
	assert.Equal(t, "web_links", reviews.Merge(docs)["x"])

	assert.Empty(t, reviews.Merge(nil))
	assert.Equal(t, []reviews.Source{
		reviews.SourceIdentity,
		reviews.SourceReviewProfile,
		reviews.SourcePublicProfile,
		reviews.SourceWebLinks,
		reviews.SourceLogo,
		reviews.SourceReviews,
	}, reviews.MergeOrder)
}

func TestAggregateByCachedDomain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("re-derives the cached domain with fresh calls", func(t *testing.T) {
		t.Parallel()
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, cache.NewMemoryStore(100))

		first, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		require.NoError(t, err)

		second, err := agg.AggregateByCachedDomain(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, int32(12), up.calls.Load())

		domain, _, err := agg.CachedDomain(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "acme.com", domain)
	})

	t.Run("nothing cached", func(t *testing.T) {
		t.Parallel()
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, cache.NewMemoryStore(100))

		_, err := agg.AggregateByCachedDomain(ctx, "tok")
		assert.ErrorIs(t, err, reviews.ErrNoCachedDomain)
		assert.Zero(t, up.calls.Load())
	})

	t.Run("expired entries trigger re-aggregation", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		store := cache.NewMemoryStore(100, cache.WithClock(clock))
		up := newFakeUpstream()
		agg := reviews.NewAggregator(up, store)

		_, err := agg.AggregateByDomain(ctx, "tok", "acme.com")
		require.NoError(t, err)

		clock.Advance(3601 * time.Second)
		_, found, err := agg.CachedProfile(ctx, "tok")
		require.NoError(t, err)
		assert.False(t, found)

		_, err = agg.AggregateByCachedDomain(ctx, "tok")
		assert.ErrorIs(t, err, reviews.ErrNoCachedDomain)

		_, err = agg.AggregateByDomain(ctx, "tok", "acme.com")
		require.NoError(t, err)
		assert.Equal(t, int32(12), up.calls.Load())
	})
}

func TestAggregateConcurrentSameToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := newFakeUpstream()
	agg := reviews.NewAggregator(up, cache.NewMemoryStore(100))

	var wg sync.WaitGroup
	results := make([]reviews.Profile, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = agg.AggregateByDomain(ctx, "tok", "acme.com")
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0], results[1])

	cached, found, err := agg.CachedProfile(ctx, "tok")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, results[0]["id"], cached["id"])
}
