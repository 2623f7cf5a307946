package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wpbr/reviewproxy/pkg/cache"
)

// Store implements cache.Store on top of a go-redis client, so several proxy
// replicas can share license and profile entries.
type Store struct {
	db     redis.UniversalClient
	prefix string
}

var _ cache.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix prepends prefix to every key. Useful when the database is
// shared with other applications.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// NewStore wraps client.
func NewStore(client redis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key. A missing key is reported as found=false.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, cache.ErrEmptyKey
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrStoreOperation, err)
	}
	return val, true, nil
}

// Set stores value under key with the given ttl.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validate(key, ttl); err != nil {
		return err
	}
	if err := s.db.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return errors.Join(ErrStoreOperation, err)
	}
	return nil
}

// SetMulti writes all entries inside one MULTI/EXEC transaction, so readers
// never observe a partial write.
func (s *Store) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if ttl <= 0 {
		return cache.ErrInvalidTTL
	}
	for key := range entries {
		if key == "" {
			return cache.ErrEmptyKey
		}
	}
	if len(entries) == 0 {
		return nil
	}

	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, s.prefix+key, value, ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreOperation, err)
	}
	return nil
}

func validate(key string, ttl time.Duration) error {
	if key == "" {
		return cache.ErrEmptyKey
	}
	if ttl <= 0 {
		return cache.ErrInvalidTTL
	}
	return nil
}
