package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

func openInMemory(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestCredentialStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(openInMemory(t, "set_get_remove"), "tab-1")

	if _, err := s.Get(ctx, "token"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "token", "def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.Get(ctx, "token")
	if err != nil || v != "def" {
		t.Fatalf("get: %q %v", v, err)
	}
	if err := s.Remove(ctx, "token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, "token"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected key to be gone, got %v", err)
	}
	if err := s.Remove(ctx, "token"); err != nil {
		t.Fatalf("removing a missing key must not fail: %v", err)
	}
}

func TestCredentialStore_ProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	d := openInMemory(t, "profiles")
	a := NewCredentialStore(d, "a")
	b := NewCredentialStore(d, "b")

	if err := a.Set(ctx, "user", `{"id":"1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.Get(ctx, "user"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("profile b sees profile a's record: %v", err)
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
