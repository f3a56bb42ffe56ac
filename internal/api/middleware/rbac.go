package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// RequireRoles gates a route group to the given roles. It expects the Auth
// middleware to have stored the verified claim already.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim, _ := c.Get(ClaimKey).(*domain.Claim)
			if claim == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if _, ok := allowed[claim.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
