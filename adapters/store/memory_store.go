package store

import (
	"context"
	"sync"
	"time"

	"github.com/mokili/momo/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process TokenStore.
// It is the default backing for single-instance deployments and tests.
type MemoryStore struct {
	data map[string]entry
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
	}
}

// Set stores a value under key for at most ttl
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves a value by key, or ports.ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", ports.ErrNotFound
	}

	return e.value, nil
}

// Delete removes a key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
