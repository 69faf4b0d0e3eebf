package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// RBAC restricts a backend route to the given roles. It reads the "rol"
// claim set by Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rol, _ := c.Get("rol").(string)
			if _, ok := allowed[domain.Role(rol)]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
