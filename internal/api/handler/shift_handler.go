package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// ShiftHandler handles shift scheduling for admins.
type ShiftHandler struct {
	shifts ports.ShiftService
}

func NewShiftHandler(shifts ports.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

type createShiftRequest struct {
	RiderID   string    `json:"rider_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// Create schedules a shift for a rider visible to the acting admin.
//
// @Summary      Schedule a shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShiftRequest  true  "Shift window"
// @Success      201   {object}  domain.Shift
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /shifts [post]
func (h *ShiftHandler) Create(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req createShiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.EndTime.After(req.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_time must be after start_time")
	}

	shift, err := h.shifts.Create(c.Request().Context(), claim, ports.CreateShiftInput{
		RiderID:   req.RiderID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, shift)
}

type shiftListResponse struct {
	Items []domain.Shift `json:"items"`
}

// List returns shifts for every rider visible to the acting admin.
//
// @Summary      List shifts
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  shiftListResponse
// @Failure      403  {object}  map[string]string
// @Router       /shifts [get]
func (h *ShiftHandler) List(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	items, err := h.shifts.List(c.Request().Context(), claim)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shiftListResponse{Items: items})
}
