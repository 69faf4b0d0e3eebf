package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/api/metrics"
	"github.com/flotacare/fleet-console/internal/core/domain"
)

// SessionManager is the part of the session the HTTP surface drives.
type SessionManager interface {
	Snapshot() domain.Snapshot
	Login(ctx context.Context, correo, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, user domain.User) error
	ResolveIdle(ctx context.Context, choice domain.IdleChoice) error
	Watch(fn func(domain.Snapshot)) (cancel func())
}

// ActivityPublisher accepts user activity for asynchronous delivery.
type ActivityPublisher interface {
	Publish(ev domain.ActivityEvent) bool
	PublishBatch(events []domain.ActivityEvent) []domain.ActivityEvent
}

// SessionHandler exposes the console session over HTTP.
type SessionHandler struct {
	session SessionManager
	feed    ActivityPublisher
	now     func() time.Time
}

func NewSessionHandler(session SessionManager, feed ActivityPublisher) *SessionHandler {
	return &SessionHandler{session: session, feed: feed, now: time.Now}
}

type snapshotResponse struct {
	State                domain.SessionState `json:"state"`
	User                 *domain.User        `json:"user,omitempty"`
	Loading              bool                `json:"loading"`
	IdleDeadline         *time.Time          `json:"idle_deadline,omitempty"`
	AwaitingConfirmation bool                `json:"awaiting_confirmation"`
}

func toSnapshotResponse(s domain.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		State:                s.State(),
		User:                 s.User,
		Loading:              s.Loading,
		AwaitingConfirmation: s.AwaitingConfirmation,
	}
	if !s.IdleDeadline.IsZero() {
		d := s.IdleDeadline.UTC()
		resp.IdleDeadline = &d
	}
	return resp
}

type sessionLoginRequest struct {
	Correo   string `json:"correo"   validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	ID     string `json:"id"     validate:"required"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo" validate:"required,email"`
	Rol    string `json:"rol"    validate:"required,oneof=Administrador Recepcionista Mecanico Cliente"`
}

type activityRequest struct {
	Type string `json:"type" validate:"required,oneof=pointermove keydown click scroll"`
}

type activityBatchRequest struct {
	Events []activityRequest `json:"events" validate:"required,dive"`
}

type activityResponse struct {
	Accepted int `json:"accepted"`
}

type idleRequest struct {
	Choice string `json:"choice" validate:"required,oneof=continue end"`
}

// Get returns the current session snapshot.
//
// @Summary      Session snapshot
// @Tags         session
// @Produce      json
// @Success      200  {object}  snapshotResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toSnapshotResponse(h.session.Snapshot()))
}

// Login starts a session. Every failure, including an unreachable
// backend, answers with the same generic message.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      sessionLoginRequest  true  "Credentials"
// @Success      200   {object}  snapshotResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req sessionLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}

	if _, err := h.session.Login(c.Request().Context(), req.Correo, req.Password); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrSessionClosed) {
			return err
		}
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toSnapshotResponse(h.session.Snapshot()))
}

// Logout ends the session. Logging out an anonymous session succeeds.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.session.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateUser replaces the cached user record.
//
// @Summary      Update cached user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "User record"
// @Success      200   {object}  snapshotResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/user [put]
func (h *SessionHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user := domain.User{ID: req.ID, Nombre: req.Nombre, Correo: req.Correo, Rol: domain.Role(req.Rol)}
	if err := h.session.UpdateUser(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSnapshotResponse(h.session.Snapshot()))
}

// Activity reports one user input.
//
// @Summary      Report activity
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      activityRequest  true  "Activity"
// @Success      202   {object}  activityResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/activity [post]
func (h *SessionHandler) Activity(c echo.Context) error {
	var req activityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	accepted := 0
	if h.feed.Publish(domain.ActivityEvent{Kind: domain.ActivityKind(req.Type), At: h.now()}) {
		metrics.ActivityEventsTotal.WithLabelValues(req.Type).Inc()
		accepted = 1
	}
	return c.JSON(http.StatusAccepted, activityResponse{Accepted: accepted})
}

// ActivityBatch reports several inputs at once, in order.
//
// @Summary      Report activity batch
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      activityBatchRequest  true  "Activity batch"
// @Success      202   {object}  activityResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/activity/batch [post]
func (h *SessionHandler) ActivityBatch(c echo.Context) error {
	var req activityBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	now := h.now()
	events := make([]domain.ActivityEvent, 0, len(req.Events))
	for _, ev := range req.Events {
		events = append(events, domain.ActivityEvent{Kind: domain.ActivityKind(ev.Type), At: now})
	}
	accepted := h.feed.PublishBatch(events)
	for _, ev := range accepted {
		metrics.ActivityEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	}
	return c.JSON(http.StatusAccepted, activityResponse{Accepted: len(accepted)})
}

// ResolveIdle answers the idle confirmation prompt.
//
// @Summary      Resolve idle prompt
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      idleRequest  true  "Choice"
// @Success      200   {object}  snapshotResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/idle [post]
func (h *SessionHandler) ResolveIdle(c echo.Context) error {
	var req idleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.session.ResolveIdle(c.Request().Context(), domain.IdleChoice(req.Choice)); err != nil {
		return err
	}
	metrics.IdlePromptsResolvedTotal.WithLabelValues(req.Choice).Inc()
	return c.JSON(http.StatusOK, toSnapshotResponse(h.session.Snapshot()))
}
