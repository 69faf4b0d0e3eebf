package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/api/metrics"
	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
)

// AuthHandler serves the development auth API.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Nombre   string `json:"nombre"   validate:"required"`
	Correo   string `json:"correo"   validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Rol      string `json:"rol"      validate:"required,oneof=Administrador Recepcionista Mecanico Cliente"`
}

type loginRequest struct {
	Correo   string `json:"correo"   validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// Register creates a backend user. Administrators only.
//
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "User details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Nombre:   req.Nombre,
		Correo:   req.Correo,
		Password: req.Password,
		Rol:      domain.Role(req.Rol),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a backend user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Correo, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		return err
	}

	metrics.BackendTokensIssuedTotal.WithLabelValues(string(user.Rol)).Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the user the bearer token belongs to.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The token outlived its user.
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// errorResponse documents the error envelope in handler annotations.
type errorResponse struct {
	Error string `json:"error"`
}
