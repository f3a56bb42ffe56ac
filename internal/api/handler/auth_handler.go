package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/api/metrics"
	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// AuthHandler handles login, impersonation, and the impersonation audit view.
type AuthHandler struct {
	tokens        ports.TokenService
	impersonation ports.ImpersonationService
}

func NewAuthHandler(tokens ports.TokenService, impersonation ports.ImpersonationService) *AuthHandler {
	return &AuthHandler{tokens: tokens, impersonation: impersonation}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login authenticates a user and returns a signed claim.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.tokens.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

type impersonateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Impersonate issues a claim for another identity under the hierarchy rules.
//
// @Summary      Impersonate another user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      impersonateRequest  true  "Target credentials"
// @Success      200   {object}  ports.DelegationResult
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/impersonate [post]
func (h *AuthHandler) Impersonate(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req impersonateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.impersonation.Delegate(c.Request().Context(), claim, req.Username, req.Password)
	if err != nil {
		return err
	}
	metrics.ImpersonationsTotal.WithLabelValues(string(claim.Role), string(result.User.Role)).Inc()
	return c.JSON(http.StatusOK, result)
}

type auditListResponse struct {
	Items []ports.AuditEntry `json:"items"`
}

// ImpersonationLogs returns recent impersonation records, newest first.
//
// @Summary      List impersonation audit records
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum records (1-100, default 20)"
// @Success      200    {object}  auditListResponse
// @Failure      403    {object}  map[string]string
// @Router       /admin/impersonation-logs [get]
func (h *AuthHandler) ImpersonationLogs(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	items, err := h.impersonation.ListRecords(c.Request().Context(), claim, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, auditListResponse{Items: items})
}
