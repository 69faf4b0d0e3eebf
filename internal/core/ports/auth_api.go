package ports

import (
	"context"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// AuthAPI is the slice of the REST backend the session depends on.
type AuthAPI interface {
	// Me validates token and returns the user it belongs to.
	Me(ctx context.Context, token string) (*domain.User, error)
	// Login exchanges credentials for a token and the user record.
	Login(ctx context.Context, correo, password string) (string, *domain.User, error)
}
