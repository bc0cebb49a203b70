package session

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for expiry checks.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps records in process memory. It is the default store for a
// single-process client such as the CLI or tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   Clock
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(realClock{})
}

func NewMemoryStoreWithClock(clock Clock) *MemoryStore {
	if clock == nil {
		clock = realClock{}
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttlDays int) error {
	if err := validKey(key); err != nil {
		return err
	}

	entry := memoryEntry{value: value}
	if ttl := TTL(ttlDays); ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}

	if !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt) {
		s.mu.Lock()
		// re-check under the write lock; a concurrent Set may have replaced it
		if cur, ok := s.entries[key]; ok && cur == entry {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}

	return entry.value, true, nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
