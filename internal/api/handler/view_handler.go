package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// Navigator lists the sidebar entries a session may open.
type Navigator interface {
	Navigation(s domain.Snapshot) []domain.RouteRule
}

// ViewHandler renders the shell views. The gated views only run after the
// Gate middleware allowed the request.
type ViewHandler struct {
	session SessionManager
	routes  Navigator
}

func NewViewHandler(session SessionManager, routes Navigator) *ViewHandler {
	return &ViewHandler{session: session, routes: routes}
}

type viewResponse struct {
	View                 string       `json:"view"`
	Path                 string       `json:"path"`
	Title                string       `json:"title,omitempty"`
	User                 *domain.User `json:"user,omitempty"`
	AwaitingConfirmation bool         `json:"awaiting_confirmation"`
}

type navEntry struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Render returns the handler of a gated view.
func (h *ViewHandler) Render(rule domain.RouteRule) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap, ok := ctxSnapshot(c)
		if !ok {
			snap = h.session.Snapshot()
		}
		return c.JSON(http.StatusOK, viewResponse{
			View:                 rule.View,
			Path:                 rule.Path,
			Title:                rule.Title,
			User:                 snap.User,
			AwaitingConfirmation: snap.AwaitingConfirmation,
		})
	}
}

// Login renders the public login view. An authenticated session is sent
// to its home route instead.
//
// @Summary      Login view
// @Tags         views
// @Produce      json
// @Success      200  {object}  viewResponse
// @Success      302  {string}  string  "role home"
// @Router       /login [get]
func (h *ViewHandler) Login(c echo.Context) error {
	snap := h.session.Snapshot()
	switch {
	case snap.Loading:
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"view": "loading"})
	case snap.Authenticated():
		return c.Redirect(http.StatusFound, domain.FallbackPath(snap.User.Rol))
	}
	return c.JSON(http.StatusOK, viewResponse{View: "login", Path: domain.PathLogin, Title: "Iniciar sesión"})
}

// Navigation lists the routes the current session may open.
//
// @Summary      Navigation
// @Tags         views
// @Produce      json
// @Success      200  {array}  navEntry
// @Router       /navigation [get]
func (h *ViewHandler) Navigation(c echo.Context) error {
	rules := h.routes.Navigation(h.session.Snapshot())
	out := make([]navEntry, 0, len(rules))
	for _, r := range rules {
		out = append(out, navEntry{Path: r.Path, Title: r.Title})
	}
	return c.JSON(http.StatusOK, out)
}
