package testutil

import (
	"context"
	"sync"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

// MemorySecretStore is an in-memory ports.SecretStore.
type MemorySecretStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ ports.SecretStore = (*MemorySecretStore)(nil)

func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{values: map[string]string{}}
}

func (s *MemorySecretStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return value, nil
}

func (s *MemorySecretStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySecretStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemorySecretStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// MemoryProfileRepository is an in-memory ports.ProfileRepository.
type MemoryProfileRepository struct {
	mu      sync.Mutex
	profile *domain.Profile
}

var _ ports.ProfileRepository = (*MemoryProfileRepository)(nil)

func (r *MemoryProfileRepository) Load(context.Context) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile == nil {
		return domain.Profile{}, domain.ErrSessionNotFound
	}
	return *r.profile, nil
}

func (r *MemoryProfileRepository) Save(_ context.Context, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = &profile
	return nil
}

func (r *MemoryProfileRepository) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = nil
	return nil
}
