package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

func TestHTTPErrorHandler_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, `{"error":"invalid payload"}`},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, `{"error":"not authenticated"}`},
		{"wrapped exists", fmt.Errorf("create: %w", domain.ErrUserExists), http.StatusConflict, `{"error":"user already exists"}`},
		{"no prompt", domain.ErrNoPendingConfirmation, http.StatusConflict, `{"error":"no idle confirmation pending"}`},
		{"unknown", errors.New("mongo exploded"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if got := rec.Body.String(); got != tt.body+"\n" {
				t.Fatalf("unexpected body %q", got)
			}
		})
	}
}
