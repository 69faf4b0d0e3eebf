package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, correo, password string) (string, *domain.User, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, correo, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, correo, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// httpCode returns the status an *echo.HTTPError carries, or 0.
func httpCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Correo != "ana@example.com" || in.Rol != domain.RoleRecepcionista {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Nombre: in.Nombre, Correo: in.Correo, Rol: in.Rol}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/users", `{"nombre":"Ana","correo":"ana@example.com","password":"secret","rol":"Recepcionista"}`)
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["correo"] != "ana@example.com" || user["rol"] != "Recepcionista" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/users", `{"nombre":"Ana","correo":"ana@example.com","password":"secret","rol":"Cliente"}`)
	c := e.NewContext(req, rec)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", "not-json", http.StatusBadRequest},
		{"unknown role", `{"nombre":"Ana","correo":"ana@example.com","password":"secret","rol":"Gerente"}`, http.StatusUnprocessableEntity},
		{"bad email", `{"nombre":"Ana","correo":"ana","password":"secret","rol":"Cliente"}`, http.StatusUnprocessableEntity},
		{"short password", `{"nombre":"Ana","correo":"ana@example.com","password":"123","rol":"Cliente"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := jsonRequest(http.MethodPost, "/users", tt.body)
			c := newEcho().NewContext(req, rec)

			if got := httpCode(handler.Register(c)); got != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, got)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, correo, password string) (string, *domain.User, error) {
			if correo != "ana@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", correo, password)
			}
			return "token123", &domain.User{ID: "u1", Correo: correo, Rol: domain.RoleAdministrador}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"correo":"ana@example.com","password":"secret"}`)
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["rol"] != "Administrador" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, correo, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"correo":"ana@example.com","password":"bad"}`)
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, correo, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", "{")
	c := e.NewContext(req, rec)

	if got := httpCode(handler.Login(c)); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		meFn: func(ctx context.Context, userID string) (*domain.User, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %q", userID)
			}
			return &domain.User{ID: "u1", Correo: "ana@example.com", Rol: domain.RoleMecanico}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("rol", "Mecanico")

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user.ID != "u1" || user.Rol != domain.RoleMecanico {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestAuthHandler_Me_DeletedUser(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		meFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "gone")

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Me_MissingClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c := newEcho().NewContext(req, httptest.NewRecorder())

	if got := httpCode(handler.Me(c)); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}
