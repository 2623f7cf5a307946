package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key-value store with per-entry expiration.
// Implementations must make Get and Set atomic per key: a reader sees either
// the previous value or the new one, never a partial write.
type Store interface {
	// Get returns the value for key. A missing or expired key yields found == false
	// and a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl. The ttl must be positive.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores all entries atomically with one shared expiration.
	SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
}
