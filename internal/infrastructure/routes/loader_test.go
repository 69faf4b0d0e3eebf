package routes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

const validTable = `
routes:
  - path: /
    view: dashboard
    roles: [Administrador, Recepcionista]
  - path: /technician
    view: technician_queue
    nav: true
    roles: [Mecanico]
  - path: /portal
    view: client_portal
    roles: [Cliente]
  - path: /profile
    view: profile
`

func TestLoad_Default(t *testing.T) {
	table, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if _, ok := table.Lookup("/users"); !ok {
		t.Fatalf("default table is missing /users")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(validTable), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rule, ok := table.Lookup("/technician")
	if !ok || !rule.Nav || !rule.Allows(domain.RoleMecanico) || rule.Allows(domain.RoleCliente) {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if profile, _ := table.Lookup("/profile"); profile.Restricted() {
		t.Fatalf("route without roles must be unrestricted")
	}
}

func TestParse_RejectsLoopingTable(t *testing.T) {
	raw := []byte(`
routes:
  - path: /
    roles: [Administrador, Recepcionista]
  - path: /technician
    roles: [Administrador]
  - path: /portal
    roles: [Cliente]
`)
	if _, err := Parse(raw); !errors.Is(err, domain.ErrInvalidRouteTable) {
		t.Fatalf("expected ErrInvalidRouteTable, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
