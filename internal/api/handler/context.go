package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. The
// subject must be present; its absence means the middleware did not run.
func ctxClaims(c echo.Context) (userID string, rol domain.Role, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	r, _ := c.Get("rol").(string)
	return userID, domain.Role(r), nil
}

// ctxSnapshot returns the session snapshot stored by the Gate middleware.
func ctxSnapshot(c echo.Context) (domain.Snapshot, bool) {
	snap, ok := c.Get("session").(domain.Snapshot)
	return snap, ok
}
