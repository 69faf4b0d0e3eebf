package ports

import (
	"context"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// RegisterInput carries the fields of a new backend user.
type RegisterInput struct {
	Nombre   string
	Correo   string
	Password string
	Rol      domain.Role
}

// AuthService issues and validates tokens for the development auth API.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, correo, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
