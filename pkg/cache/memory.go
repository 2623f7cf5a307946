package cache

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-process Store.
// Entries expire lazily on read. When the store reaches its capacity,
// the least recently used entry is evicted.
type MemoryStore struct {
	capacity int
	clock    clockwork.Clock
	items    map[string]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key string) // called for capacity evictions and expirations
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock used to compute and check expirations.
func WithClock(c clockwork.Clock) MemoryOption {
	return func(s *MemoryStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithEvictCallback registers a callback invoked whenever an entry leaves
// the store, whether by capacity eviction or expiry.
func WithEvictCallback(fn func(key string)) MemoryOption {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// NewMemoryStore creates a store holding at most capacity entries.
// The capacity must be positive, otherwise it panics.
//
// Eviction removes one key at a time, so entries written together by SetMulti
// can be split when the store is full. The proxy keeps three entries per
// license token (license, domain and profile); size capacity above three
// times the expected number of tokens to avoid evicting live entries.
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	if capacity <= 0 {
		panic("memory store capacity must be positive")
	}
	s := &MemoryStore{
		capacity: capacity,
		clock:    clockwork.NewRealClock(),
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the stored value. Expired entries are removed and
// reported as missing.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if s.expired(entry) {
		s.removeElement(elem)
		return nil, false, nil
	}
	s.eviction.MoveToFront(elem)
	return slices.Clone(entry.value), true, nil
}

// Set stores value under key for ttl.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validate(key, ttl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, s.clock.Now().Add(ttl))
	return nil
}

// SetMulti stores all entries under a single lock with one shared expiration.
func (s *MemoryStore) SetMulti(_ context.Context, entries map[string][]byte, ttl time.Duration) error {
	for key := range entries {
		if err := validate(key, ttl); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := s.clock.Now().Add(ttl)
	for key, value := range entries {
		s.put(key, value, expiresAt)
	}
	return nil
}

// ExpiresAt reports when key expires. Expired and missing keys return false.
func (s *MemoryStore) ExpiresAt(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return time.Time{}, false
	}
	entry := elem.Value.(*memoryEntry)
	if s.expired(entry) {
		return time.Time{}, false
	}
	return entry.expiresAt, true
}

// Len returns the number of entries, including expired ones not yet purged.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eviction.Len()
}

// Purge removes every expired entry and returns how many were dropped.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for elem := s.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if s.expired(elem.Value.(*memoryEntry)) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// StartJanitor purges expired entries every interval until ctx is done.
// Expiry is enforced on read regardless; the janitor only bounds memory held
// by entries nobody asks for again.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := s.clock.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.Purge()
			}
		}
	}()
}

// Must be called with lock held.
func (s *MemoryStore) put(key string, value []byte, expiresAt time.Time) {
	value = slices.Clone(value)
	if elem, ok := s.items[key]; ok {
		s.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	elem := s.eviction.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	s.items[key] = elem

	if s.eviction.Len() > s.capacity {
		if oldest := s.eviction.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
}

// Must be called with lock held.
func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return !s.clock.Now().Before(entry.expiresAt)
}

// Must be called with lock held.
func (s *MemoryStore) removeElement(elem *list.Element) {
	s.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(s.items, entry.key)

	if s.onEvict != nil {
		s.onEvict(entry.key)
	}
}

func validate(key string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}
