package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/service"
)

func defaultTable(t *testing.T) *service.RouteTable {
	t.Helper()
	table, err := service.NewRouteTable(domain.DefaultRoutes)
	if err != nil {
		t.Fatalf("route table: %v", err)
	}
	return table
}

func TestViewHandler_Render_UsesGateSnapshot(t *testing.T) {
	table := defaultTable(t)
	rule, _ := table.Lookup("/vehicles")
	handler := NewViewHandler(&stubSession{}, table)

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.Set("session", domain.Snapshot{User: &domain.User{ID: "u1", Rol: domain.RoleRecepcionista}})

	if err := handler.Render(rule)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Path != "/vehicles" || resp.View != rule.View || resp.User == nil || resp.User.ID != "u1" {
		t.Fatalf("unexpected view %+v", resp)
	}
}

func TestViewHandler_Login(t *testing.T) {
	tests := []struct {
		name     string
		snap     domain.Snapshot
		code     int
		location string
	}{
		{"anonymous sees form", domain.Snapshot{}, http.StatusOK, ""},
		{"loading", domain.Snapshot{Loading: true}, http.StatusServiceUnavailable, ""},
		{"mecanico sent home", domain.Snapshot{User: &domain.User{Rol: domain.RoleMecanico}}, http.StatusFound, "/technician"},
		{"cliente sent home", domain.Snapshot{User: &domain.User{Rol: domain.RoleCliente}}, http.StatusFound, "/portal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewViewHandler(&stubSession{snap: tt.snap}, defaultTable(t))
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			rec := httptest.NewRecorder()

			if err := handler.Login(newEcho().NewContext(req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Fatalf("expected location %q, got %q", tt.location, got)
			}
		})
	}
}

func TestViewHandler_Navigation(t *testing.T) {
	session := &stubSession{snap: domain.Snapshot{User: &domain.User{Rol: domain.RoleMecanico}}}
	handler := NewViewHandler(session, defaultTable(t))

	req := httptest.NewRequest(http.MethodGet, "/navigation", nil)
	rec := httptest.NewRecorder()
	if err := handler.Navigation(newEcho().NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var entries []navEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := []string{"/services", "/spare-parts", "/technician"}
	if len(entries) != len(want) {
		t.Fatalf("got %+v, want paths %v", entries, want)
	}
	for i, e := range entries {
		if e.Path != want[i] {
			t.Fatalf("entry %d: got %s, want %s", i, e.Path, want[i])
		}
	}
}
