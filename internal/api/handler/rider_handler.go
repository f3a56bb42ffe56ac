package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/api/metrics"
	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// RiderHandler handles the rider-facing presence and attendance surface.
type RiderHandler struct {
	presence   ports.PresenceService
	attendance ports.AttendanceService
}

func NewRiderHandler(presence ports.PresenceService, attendance ports.AttendanceService) *RiderHandler {
	return &RiderHandler{presence: presence, attendance: attendance}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus appends a new status event for the authenticated rider.
//
// @Summary      Report rider status
// @Tags         rider
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      201   {object}  domain.PresenceEvent
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /rider/status [post]
func (h *RiderHandler) UpdateStatus(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.presence.Append(c.Request().Context(), claim, domain.Status(req.Status))
	if err != nil {
		return err
	}
	metrics.PresenceEventsTotal.WithLabelValues(string(event.Status)).Inc()
	return c.JSON(http.StatusCreated, event)
}

// Queue returns the wait-ordered dispatch queue for the rider's store.
//
// @Summary      Dispatch queue position
// @Tags         rider
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.QueueResult
// @Failure      403  {object}  map[string]string
// @Router       /rider/queue [get]
func (h *RiderHandler) Queue(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	result, err := h.presence.BuildQueue(c.Request().Context(), claim)
	if err != nil {
		return err
	}
	metrics.QueueRequestsTotal.WithLabelValues(string(result.Status)).Inc()
	return c.JSON(http.StatusOK, result)
}

type markAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent off_day"`
}

// MarkAttendance records the rider's attendance for today.
//
// @Summary      Mark today's attendance
// @Tags         rider
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markAttendanceRequest  true  "Attendance status"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /attendance/mark [post]
func (h *RiderHandler) MarkAttendance(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req markAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.attendance.Mark(c.Request().Context(), claim, domain.AttendanceStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "attendance recorded"})
}

type attendanceResponse struct {
	Marked     bool               `json:"marked"`
	Attendance *domain.Attendance `json:"attendance,omitempty"`
}

// TodayAttendance returns the rider's attendance mark for today, if any.
//
// @Summary      Today's attendance
// @Tags         rider
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  attendanceResponse
// @Failure      403  {object}  map[string]string
// @Router       /attendance/today [get]
func (h *RiderHandler) TodayAttendance(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	att, err := h.attendance.Today(c.Request().Context(), claim)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attendanceResponse{Marked: att != nil, Attendance: att})
}
