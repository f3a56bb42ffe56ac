package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/api/middleware"
	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// ctxClaim extracts the verified claim injected by the Auth middleware.
// Its presence proves the middleware ran; handlers fail fast otherwise.
func ctxClaim(c echo.Context) (*domain.Claim, error) {
	claim, _ := c.Get(middleware.ClaimKey).(*domain.Claim)
	if claim == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claim, nil
}
