// Package memory implements an in-memory artifact store, used by tests and
// dry runs that want to inspect what would have been persisted.
package memory

import (
	"context"
	"sync"
)

// Store keeps saved artifacts in a map.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailWith, when set, is returned by every Save. Lets tests exercise
	// the fallback path.
	FailWith error
}

// New creates an empty Store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Save records data under key.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[key] = copied
	return nil
}

// Get returns the artifact saved under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len returns the number of stored artifacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
