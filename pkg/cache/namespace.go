package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// LookupObserver is notified of every namespace read.
type LookupObserver func(namespace string, hit bool)

// NamespaceOption configures a Namespace.
type NamespaceOption func(*namespaceConfig)

type namespaceConfig struct {
	observer LookupObserver
}

// WithLookupObserver reports hits and misses, e.g. to a metrics collector.
func WithLookupObserver(fn LookupObserver) NamespaceOption {
	return func(c *namespaceConfig) { c.observer = fn }
}

// Namespace is a typed view over a Store. Keys are built as "{name}:{id}"
// and values are JSON encoded.
type Namespace[T any] struct {
	store    Store
	name     string
	ttl      time.Duration
	observer LookupObserver
}

// NewNamespace binds name and ttl to store. It panics on an empty name or a
// non-positive ttl, since both are wiring mistakes.
func NewNamespace[T any](store Store, name string, ttl time.Duration, opts ...NamespaceOption) Namespace[T] {
	if name == "" {
		panic("cache namespace name must not be empty")
	}
	if ttl <= 0 {
		panic("cache namespace ttl must be positive")
	}
	cfg := &namespaceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return Namespace[T]{store: store, name: name, ttl: ttl, observer: cfg.observer}
}

// Name returns the key prefix.
func (n Namespace[T]) Name() string { return n.name }

// TTL returns the lifetime applied to every write.
func (n Namespace[T]) TTL() time.Duration { return n.ttl }

// Key returns the store key for id.
func (n Namespace[T]) Key(id string) string { return n.name + ":" + id }

// Get loads and decodes the value stored for id.
func (n Namespace[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	raw, found, err := n.store.Get(ctx, n.Key(id))
	if err != nil {
		return zero, false, err
	}
	if n.observer != nil {
		n.observer(n.name, found)
	}
	if !found {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, errors.Join(ErrDecode, err)
	}
	return v, true, nil
}

// Set encodes v and stores it for id with the namespace ttl.
func (n Namespace[T]) Set(ctx context.Context, id string, v T) error {
	raw, err := n.encode(v)
	if err != nil {
		return err
	}
	return n.store.Set(ctx, n.Key(id), raw, n.ttl)
}

func (n Namespace[T]) encode(v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return raw, nil
}

// SetPair writes one entry in each of two namespaces for the same id. Both
// entries land in a single SetMulti call, so they share one expiration and
// are written atomically. The namespaces must have equal ttls; the store of
// the first namespace is used.
func SetPair[A, B any](ctx context.Context, id string, a Namespace[A], av A, b Namespace[B], bv B) error {
	if a.ttl != b.ttl {
		return ErrTTLMismatch
	}
	rawA, err := a.encode(av)
	if err != nil {
		return err
	}
	rawB, err := b.encode(bv)
	if err != nil {
		return err
	}
	return a.store.SetMulti(ctx, map[string][]byte{
		a.Key(id): rawA,
		b.Key(id): rawB,
	}, a.ttl)
}
