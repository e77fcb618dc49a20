package handler

import (
	"errors"
	"time"

	"fleetops/internal/features/trips/domain"
	"fleetops/internal/features/trips/service"

	"github.com/gofiber/fiber/v2"
)

// TripHandler handles HTTP requests for telemetry ingestion and trip reads.
type TripHandler struct {
	telemetryService *service.TelemetryService
	laneService      *service.LaneService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(telemetryService *service.TelemetryService, laneService *service.LaneService) *TripHandler {
	return &TripHandler{
		telemetryService: telemetryService,
		laneService:      laneService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// IngestTelemetryRequest is the payload delivered by GPS/SIM polling
// integrations.
type IngestTelemetryRequest struct {
	TripID    string    `json:"tripId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestTelemetry godoc
// @Summary Ingest a telemetry sample
// @Description Stores one location point and synchronously evaluates alert rules and geofences for the trip
// @Tags telemetry
// @Accept json
// @Produce json
// @Param request body IngestTelemetryRequest true "Telemetry sample"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /telemetry [post]
func (h *TripHandler) IngestTelemetry(c *fiber.Ctx) error {
	var req IngestTelemetryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if req.TripID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tripId is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	err := h.telemetryService.Ingest(c.Context(), domain.LocationPoint{
		TripID:    req.TripID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SpeedKmh:  req.Speed,
		Heading:   req.Heading,
		Source:    domain.LocationSource(req.Source),
		EventTime: req.Timestamp,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTripNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "trip not found",
				RayID:   c.Locals("requestid").(string),
			})
		case errors.Is(err, service.ErrTripNotOngoing), errors.Is(err, service.ErrInvalidCoordinates):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to ingest telemetry",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// GetTrip godoc
// @Summary Get trip details
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} domain.Trip
// @Failure 404 {object} ErrorResponse
// @Router /trips/{id} [get]
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	trip, err := h.telemetryService.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "trip not found",
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load trip",
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(trip)
}

// GetLocations godoc
// @Summary Get recent locations for a trip
// @Description Returns up to limit telemetry samples, newest first
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Param limit query int false "Maximum samples (default 50)"
// @Success 200 {array} domain.LocationPoint
// @Failure 500 {object} ErrorResponse
// @Router /trips/{id}/locations [get]
func (h *TripHandler) GetLocations(c *fiber.Ctx) error {
	points, err := h.telemetryService.RecentLocations(c.Context(), c.Params("id"), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load locations",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if points == nil {
		points = []domain.LocationPoint{}
	}
	return c.JSON(points)
}

// RefreshLaneRoute godoc
// @Summary Refresh a lane's cached route
// @Description Re-fetches the encoded polyline and distance/duration from the routing provider
// @Tags lanes
// @Produce json
// @Param id path string true "Lane ID"
// @Success 200 {object} domain.Lane
// @Failure 404 {object} ErrorResponse
// @Router /lanes/{id}/route/refresh [post]
func (h *TripHandler) RefreshLaneRoute(c *fiber.Ctx) error {
	lane, err := h.laneService.RefreshRoute(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrLaneNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "lane not found",
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to refresh lane route",
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(lane)
}
