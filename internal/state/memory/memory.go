// Package memory implements an in-memory session state store, used by
// default and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// Store implements an in-memory state store
type Store struct {
	mu   sync.RWMutex
	data map[string]state.Bag
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{data: make(map[string]state.Bag)}
}

func (s *Store) Load(ctx context.Context, sessionID string) (state.Bag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bag, ok := s.data[sessionID]
	if !ok {
		return state.Bag{}, nil
	}
	return bag.Clone(), nil
}

func (s *Store) Save(ctx context.Context, sessionID string, bag state.Bag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sessionID] = bag.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, sessionID)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }
