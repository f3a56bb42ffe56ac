package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error taxonomy to deterministic HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. The messages stay
	// deliberately terse so a caller without visibility rights learns
	// nothing about what exists.
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, domain.ErrInactiveUser):
		return http.StatusUnauthorized, "unknown or inactive user"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "insufficient role"
	case errors.Is(err, domain.ErrOwnershipViolation):
		return http.StatusForbidden, domain.ErrOwnershipViolation.Error()
	case errors.Is(err, domain.ErrImpersonationNotAllowed):
		return http.StatusForbidden, domain.ErrImpersonationNotAllowed.Error()
	case errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "username already exists"
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, "required field missing"
	}

	// Unexpected error (storage failures included): log the real cause,
	// return a generic message so half-completed mutations stay opaque.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
