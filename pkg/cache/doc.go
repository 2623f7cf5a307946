// Package cache provides the time-bounded key-value storage used by the proxy
// for license status memoization and per-subscriber profile caching.
//
// The package is split into two layers:
//
//   - Store: a byte-oriented interface with Get, Set and SetMulti.
//     MemoryStore is the in-process implementation; the redis package
//     provides a shared one.
//   - Namespace: a typed, JSON-encoded view over a Store that owns a key
//     prefix and a ttl. Several namespaces can share one Store while keeping
//     their keys and lifetimes separate.
//
// # Usage
//
//	store := cache.NewMemoryStore(10_000)
//
//	statuses := cache.NewNamespace[string](store, "license", time.Hour)
//	_ = statuses.Set(ctx, token, "active")
//
//	status, found, err := statuses.Get(ctx, token)
//	if err != nil {
//		// store or decode failure
//	}
//	if !found {
//		// missing or expired
//	}
//
// # Expiration
//
// MemoryStore checks expiry on every read; an expired entry is removed and
// reported as missing. No background goroutine is required. StartJanitor may
// be used to reclaim memory from entries that are never read again.
//
// The clock is injectable, which makes expiry deterministic in tests:
//
//	clock := clockwork.NewFakeClock()
//	store := cache.NewMemoryStore(100, cache.WithClock(clock))
//	_ = store.Set(ctx, "k", []byte("v"), time.Hour)
//	clock.Advance(time.Hour + time.Second)
//	_, found, _ := store.Get(ctx, "k") // found == false
//
// # Paired writes
//
// SetPair writes two namespaces for the same id in one SetMulti call so both
// entries are visible together and expire at the same instant:
//
//	err := cache.SetPair(ctx, token, domains, "example.com", profiles, profile)
//
// # Capacity
//
// MemoryStore is bounded. When a write would exceed capacity, the least
// recently used entry is evicted.
package cache
