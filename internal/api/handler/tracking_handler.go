package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// PingDispatcher accepts location pings for asynchronous processing.
type PingDispatcher interface {
	Enqueue(ping ports.LocationPing)
}

// TrackingHandler handles live rider location ingestion and reads.
type TrackingHandler struct {
	dispatcher PingDispatcher
	locations  ports.LocationStore
	directory  ports.DirectoryService
}

func NewTrackingHandler(dispatcher PingDispatcher, locations ports.LocationStore, directory ports.DirectoryService) *TrackingHandler {
	return &TrackingHandler{dispatcher: dispatcher, locations: locations, directory: directory}
}

type locationRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// UpdateLocation accepts a GPS sample from the authenticated rider. The write
// happens asynchronously; the endpoint acknowledges receipt with 202.
//
// @Summary      Report rider location
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationRequest  true  "GPS coordinates"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /tracking/location [post]
func (h *TrackingHandler) UpdateLocation(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}
	if claim.Role != domain.RoleRider {
		return domain.ErrInsufficientRole
	}

	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.dispatcher.Enqueue(ports.LocationPing{
		RiderID:    claim.SubjectID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		RecordedAt: time.Now().UTC(),
	})
	return c.JSON(http.StatusAccepted, messageResponse{Message: "location accepted"})
}

type liveLocationsResponse struct {
	Items []domain.RiderLocation `json:"items"`
}

// Live returns the last known position of every rider visible to the actor.
//
// @Summary      Live rider locations
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  liveLocationsResponse
// @Failure      403  {object}  map[string]string
// @Router       /tracking/live [get]
func (h *TrackingHandler) Live(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	visible, err := h.directory.VisibleRiderIDs(c.Request().Context(), claim, "")
	if err != nil {
		return err
	}
	all, err := h.locations.All(c.Request().Context())
	if err != nil {
		return err
	}

	allowed := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		allowed[id] = struct{}{}
	}
	items := make([]domain.RiderLocation, 0, len(all))
	for _, loc := range all {
		if _, ok := allowed[loc.RiderID]; ok {
			items = append(items, loc)
		}
	}
	return c.JSON(http.StatusOK, liveLocationsResponse{Items: items})
}
