package ports

import (
	"context"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// UserRepository persists backend users for the development auth API.
type UserRepository interface {
	FindByEmail(ctx context.Context, correo string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
