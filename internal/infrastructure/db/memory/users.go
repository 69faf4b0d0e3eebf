package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// UserRepository is a map-backed user repository for the development auth API.
type UserRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	email map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[string]*domain.User), email: make(map[string]string)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.email[user.Correo]; exists {
		return nil, domain.ErrUserExists
	}
	u := *user
	u.ID = uuid.NewString()
	r.byID[u.ID] = &u
	r.email[u.Correo] = u.ID
	out := u
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, correo string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.email[correo]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}
