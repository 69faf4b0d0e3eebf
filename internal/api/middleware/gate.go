package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/api/metrics"
	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/service"
)

// SnapshotProvider exposes the current session state.
type SnapshotProvider interface {
	Snapshot() domain.Snapshot
}

// Gate authorizes every request against rule using a fresh snapshot. An
// allowed request continues with the snapshot stored under "session".
func Gate(session SnapshotProvider, rule domain.RouteRule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := session.Snapshot()
			decision := service.Authorize(snap, rule)
			metrics.GateDecisionsTotal.WithLabelValues(string(decision.Outcome), rule.Path).Inc()

			switch decision.Outcome {
			case domain.OutcomeLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"view": "loading"})
			case domain.OutcomeRedirect:
				return c.Redirect(http.StatusFound, decision.Target)
			}

			c.Set("session", snap)
			return next(c)
		}
	}
}
