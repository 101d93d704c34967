package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type entry struct {
	value      []byte
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// MemoryStore is a bounded in-process Store.
// When full, adding a new key evicts the least recently used entry.
// Expired entries are dropped on read, and before any live entry is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[string, entry]
	maxEntries int
	now        func() time.Time
	onEvict    func(key string)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithOnEvict is called for every entry evicted to make room.
func WithOnEvict(fn func(key string)) MemoryOption {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// NewMemoryStore creates a store holding at most maxEntries entries.
func NewMemoryStore(maxEntries int, opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{maxEntries: maxEntries, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	l, err := simplelru.NewLRU[string, entry](maxEntries, nil)
	if err != nil {
		return nil, err
	}
	s.lru = l
	return s, nil
}

// Get returns a copy of the stored value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var victim string
	full := !s.lru.Contains(key) && s.lru.Len() >= s.maxEntries
	if full {
		s.dropExpired()
		full = s.lru.Len() >= s.maxEntries
	}
	if full {
		victim, _, _ = s.lru.GetOldest()
	}

	evicted := s.lru.Add(key, entry{
		value:      append([]byte(nil), value...),
		insertedAt: s.now(),
		ttl:        ttl,
	})
	if evicted && full && s.onEvict != nil {
		s.onEvict(victim)
	}
	return nil
}

// dropExpired removes every expired entry without touching recency. Callers hold mu.
func (s *MemoryStore) dropExpired() {
	now := s.now()
	for _, k := range s.lru.Keys() {
		if e, ok := s.lru.Peek(k); ok && e.expired(now) {
			s.lru.Remove(k)
		}
	}
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Purge()
	return nil
}

// Len counts stored entries, including expired ones not yet read.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

//Personal.AI order the ending
