package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

type stubForwarder struct {
	method, path, query, body string
}

func (f *stubForwarder) Forward(ctx context.Context, method, path, rawQuery string, body io.Reader, contentType string) (*http.Response, error) {
	f.method, f.path, f.query = method, path, rawQuery
	if body != nil {
		raw, _ := io.ReadAll(body)
		f.body = string(raw)
	}
	return &http.Response{
		StatusCode: http.StatusCreated,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"id":"v1"}`)),
	}, nil
}

func TestForwardHandler_Relays(t *testing.T) {
	backend := &stubForwarder{}
	session := &stubSession{snap: domain.Snapshot{User: &domain.User{Rol: domain.RoleRecepcionista}}}
	handler := NewForwardHandler(session, backend)

	e := newEcho()
	e.Any("/api/*", handler.Forward)
	req, rec := jsonRequest(http.MethodPost, "/api/vehicles?draft=1", `{"placa":"ABC-123"}`)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated || rec.Body.String() != `{"id":"v1"}` {
		t.Fatalf("unexpected relay %d %q", rec.Code, rec.Body.String())
	}
	if backend.method != http.MethodPost || backend.path != "/vehicles" || backend.query != "draft=1" {
		t.Fatalf("unexpected forward %+v", backend)
	}
	if backend.body != `{"placa":"ABC-123"}` {
		t.Fatalf("body not relayed: %q", backend.body)
	}
}

func TestForwardHandler_RequiresSession(t *testing.T) {
	backend := &stubForwarder{}
	handler := NewForwardHandler(&stubSession{}, backend)

	e := newEcho()
	e.Any("/api/*", handler.Forward)
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if backend.method != "" {
		t.Fatalf("backend must not be called")
	}
}
