// Package tokenstore persists the single access token the client holds
// between launches. Exactly one secret lives under a fixed key; backends
// differ only in where and how it rests.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Read when no token has been saved.
var ErrNotFound = errors.New("tokenstore: no token stored")

// Store is the secure token store. Save overwrites, Clear is idempotent, and
// Read reports absence with ErrNotFound rather than an empty string.
type Store interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory. It backs tests and platforms
// that bridge to their own keychain around the client core.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *MemoryStore) Read(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", ErrNotFound
	}
	return s.token, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
