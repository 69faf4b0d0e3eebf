package domain

import (
	"errors"
	"time"
)

// Role determines which routes a user may open.
type Role string

const (
	RoleAdministrador Role = "Administrador"
	RoleRecepcionista Role = "Recepcionista"
	RoleMecanico      Role = "Mecanico"
	RoleCliente       Role = "Cliente"
)

// Roles lists every known role in a stable order.
var Roles = []Role{RoleAdministrador, RoleRecepcionista, RoleMecanico, RoleCliente}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrador, RoleRecepcionista, RoleMecanico, RoleCliente:
		return true
	}
	return false
}

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidUser          = errors.New("invalid user")
	ErrForbidden            = errors.New("access forbidden")
	ErrCredentialNotFound   = errors.New("credential not found")
)

// User models an authenticated actor. The console holds a cached copy of
// the record owned by the backend.
type User struct {
	ID           string    `json:"id"`
	Nombre       string    `json:"nombre"`
	Correo       string    `json:"correo"`
	Rol          Role      `json:"rol"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Validate checks the fields the console relies on.
func (u *User) Validate() error {
	if u == nil || u.ID == "" || u.Correo == "" || !u.Rol.Valid() {
		return ErrInvalidUser
	}
	return nil
}
