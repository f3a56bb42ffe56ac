package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// ClaimKey is the echo context key the verified claim is stored under.
const ClaimKey = "claim"

// ClaimVerifier is the slice of the token service the middleware needs:
// pure token verification plus the separate subject-resolution step.
type ClaimVerifier interface {
	Verify(token string) (*domain.Claim, error)
	ResolveSubject(ctx context.Context, claim *domain.Claim) (*domain.User, error)
}

// Auth validates the bearer token and injects the verified claim into the
// request context. The claim's subject is resolved against the directory so
// that tokens for deleted or disabled accounts stop working immediately.
func Auth(verifier ClaimVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claim, err := verifier.Verify(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if _, err := verifier.ResolveSubject(c.Request().Context(), claim); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown or inactive user")
			}

			c.Set(ClaimKey, claim)
			return next(c)
		}
	}
}
