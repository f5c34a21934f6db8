// Package memory provides an in-memory implementation of the
// coordination store. Useful for testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/remuskit/netbuf/store"
)

// Store implements store.Store in memory.
type Store struct {
	mu sync.RWMutex
	kv map[string]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{kv: make(map[string]string)}
}

// Read returns the value at key, or store.ErrNotFound.
func (s *Store) Read(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.kv[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%s: %w", key, store.ErrNotFound)
}

// Write sets the value at key.
func (s *Store) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kv[key] = value
	return nil
}

// Delete removes the key. Absent keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kv, key)
	return nil
}

// Exists reports whether the key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.kv[key]
	return ok, nil
}

// List returns all keys with the given prefix, sorted.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
