package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// AdminHandler handles the hierarchy management and dashboard surface.
type AdminHandler struct {
	directory ports.DirectoryService
	presence  ports.PresenceService
}

func NewAdminHandler(directory ports.DirectoryService, presence ports.PresenceService) *AdminHandler {
	return &AdminHandler{directory: directory, presence: presence}
}

type createRiderRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Store     string `json:"store" validate:"required"`
	ManagerID string `json:"manager_id,omitempty"`
}

// AddRider creates a rider account under the acting admin (or, for the prime
// admin, under a named sub admin).
//
// @Summary      Create a rider
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRiderRequest  true  "Rider details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/riders [post]
func (h *AdminHandler) AddRider(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req createRiderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.directory.CreateSubordinate(c.Request().Context(), claim, ports.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Name:      req.Name,
		Role:      domain.RoleRider,
		Store:     req.Store,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

type createSubAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Store    string `json:"store,omitempty"`
}

// AddSubAdmin creates a sub admin managed by the prime admin.
//
// @Summary      Create a sub admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSubAdminRequest  true  "Sub admin details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/sub-admins [post]
func (h *AdminHandler) AddSubAdmin(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req createSubAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.directory.CreateSubordinate(c.Request().Context(), claim, ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.RoleSubAdmin,
		Store:    req.Store,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

type deleteUserRequest struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// DeleteUser removes the selected user; sub admins cascade through their
// riders and every dependent row in the same transaction.
//
// @Summary      Delete a rider or sub admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteUserRequest  true  "Target selector (id or username)"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/riders [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err = h.directory.DeleteUser(c.Request().Context(), claim, ports.UserSelector{
		ID:       req.ID,
		Username: req.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

type riderListResponse struct {
	Items []ports.RiderState `json:"items"`
}

// ListRiders returns every visible rider with its latest status; riders with
// no events yet show the offline sentinel.
//
// @Summary      List visible riders
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        store  query     string  false  "Store filter"
// @Success      200    {object}  riderListResponse
// @Failure      403    {object}  map[string]string
// @Router       /admin/riders [get]
func (h *AdminHandler) ListRiders(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	items, err := h.presence.RiderStates(c.Request().Context(), claim, c.QueryParam("store"), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, riderListResponse{Items: items})
}

// RiderStatus returns latest status per rider, omitting riders that never
// reported one.
//
// @Summary      Latest status per visible rider
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        store  query     string  false  "Store filter"
// @Success      200    {object}  riderListResponse
// @Failure      403    {object}  map[string]string
// @Router       /admin/rider-status [get]
func (h *AdminHandler) RiderStatus(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	items, err := h.presence.RiderStates(c.Request().Context(), claim, c.QueryParam("store"), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, riderListResponse{Items: items})
}

// DashboardStats summarises visible riders by current status plus today's
// absentees.
//
// @Summary      Admin dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        store  query     string  false  "Store filter"
// @Success      200    {object}  ports.DashboardStats
// @Failure      403    {object}  map[string]string
// @Router       /admin/dashboard-stats [get]
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	stats, err := h.presence.DashboardStats(c.Request().Context(), claim, c.QueryParam("store"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

type subAdminListResponse struct {
	Items []ports.SubAdminOverview `json:"items"`
}

// ListSubAdmins returns every sub admin with its rider count. Prime only.
//
// @Summary      List sub admins
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  subAdminListResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/sub-admins [get]
func (h *AdminHandler) ListSubAdmins(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	items, err := h.directory.ListSubAdmins(c.Request().Context(), claim)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subAdminListResponse{Items: items})
}

// PrimeOverview aggregates rider activity per sub admin and per store.
//
// @Summary      Prime admin overview
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.PrimeOverview
// @Failure      403  {object}  map[string]string
// @Router       /admin/prime-overview [get]
func (h *AdminHandler) PrimeOverview(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	overview, err := h.presence.Overview(c.Request().Context(), claim)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}
