package memory

import (
	"context"
	"sync"

	"budget/internal/kv"
)

// Store keeps values in process memory. Values are copied in and out so
// callers cannot alias the stored bytes.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func New() *Store {
	return &Store{items: map[string][]byte{}}
}

// NewWithItems seeds the store, e.g. to simulate data from a previous session.
func NewWithItems(items map[string][]byte) *Store {
	s := New()
	for k, v := range items {
		s.items[k] = clone(v)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = clone(value)
	s.sets++
	return nil
}

// Sets returns how many writes the store accepted.
func (s *Store) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// Keys returns the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
