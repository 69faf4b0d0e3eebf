// Package memory holds process-local implementations of the storage ports,
// used in tests and when no persistent backend is configured.
package memory

import (
	"context"
	"sync"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// CredentialStore is a map-backed credential store.
type CredentialStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{data: make(map[string]string)}
}

func (s *CredentialStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	return v, nil
}

func (s *CredentialStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *CredentialStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *CredentialStore) Ping(context.Context) error { return nil }
