package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Forwarder relays an application request to the backend.
type Forwarder interface {
	Forward(ctx context.Context, method, path, rawQuery string, body io.Reader, contentType string) (*http.Response, error)
}

// ForwardHandler relays /api/* to the backend with the session's bearer
// token. Only authenticated sessions may use it.
type ForwardHandler struct {
	session SessionManager
	backend Forwarder
}

func NewForwardHandler(session SessionManager, backend Forwarder) *ForwardHandler {
	return &ForwardHandler{session: session, backend: backend}
}

var forwardedHeaders = []string{echo.HeaderContentType, "Cache-Control", "ETag", "Location"}

// Forward relays the request and copies status, selected headers and body.
func (h *ForwardHandler) Forward(c echo.Context) error {
	if snap := h.session.Snapshot(); !snap.Authenticated() {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	}

	req := c.Request()
	resp, err := h.backend.Forward(req.Context(), req.Method, "/"+c.Param("*"), req.URL.RawQuery, req.Body, req.Header.Get(echo.HeaderContentType))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable").SetInternal(err)
	}
	defer resp.Body.Close()

	for _, k := range forwardedHeaders {
		if v := resp.Header.Get(k); v != "" {
			c.Response().Header().Set(k, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	_, err = io.Copy(c.Response(), resp.Body)
	return err
}
