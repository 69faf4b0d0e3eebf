package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

func TestCredentialStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()

	if _, err := s.Get(ctx, "token"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := s.Get(ctx, "token"); err != nil || v != "abc" {
		t.Fatalf("get: %q %v", v, err)
	}
	if err := s.Remove(ctx, "token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "token"); err != nil {
		t.Fatalf("removing a missing key must not fail: %v", err)
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	created, err := r.Create(ctx, &domain.User{Nombre: "Ana", Correo: "ana@example.com", Rol: domain.RoleCliente})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := r.Create(ctx, &domain.User{Correo: "ana@example.com"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	byEmail, err := r.FindByEmail(ctx, "ana@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("find by email: %+v %v", byEmail, err)
	}
	if _, err := r.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
