package kv

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. Used for tests and
// ephemeral runs (LAUNCHPAD_STORAGE=memory).
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	locks map[string]memLock
	now   func() time.Time
	seq   uint64
}

type memLock struct {
	owner   uint64
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		locks: make(map[string]memLock),
		now:   time.Now,
	}
}

// SetClock replaces the clock lock expiry is measured against.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// NewMemoryStoreWith seeds the store with raw string values.
func NewMemoryStoreWith(seed map[string]string) *MemoryStore {
	s := NewMemoryStore()
	for k, v := range seed {
		s.data[k] = []byte(v)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Keys returns every stored key, sorted.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Backend() string            { return "memory" }
func (s *MemoryStore) Close() error               { return nil }

func (s *MemoryStore) Lock(_ context.Context, key string, ttl time.Duration) (*Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, held := s.locks[key]; held && now.Before(l.expires) {
		return nil, ErrLocked
	}
	s.seq++
	owner := s.seq
	s.locks[key] = memLock{owner: owner, expires: now.Add(ttl)}

	return &Lease{
		refresh: func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if l, held := s.locks[key]; held && l.owner != owner {
				return ErrLocked
			}
			s.locks[key] = memLock{owner: owner, expires: s.now().Add(ttl)}
			return nil
		},
		release: func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			// only release our own acquisition
			if s.locks[key].owner == owner {
				delete(s.locks, key)
			}
			return nil
		},
	}, nil
}
