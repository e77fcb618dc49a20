package handler

import (
	"context"
	"errors"

	"fleetops/internal/features/alerts/domain"
	"fleetops/internal/features/alerts/service"

	"github.com/gofiber/fiber/v2"
)

// AlertHandler handles HTTP requests for trip alert operations.
type AlertHandler struct {
	evaluator *service.Evaluator
	lifecycle *service.LifecycleService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(evaluator *service.Evaluator, lifecycle *service.LifecycleService) *AlertHandler {
	return &AlertHandler{
		evaluator: evaluator,
		lifecycle: lifecycle,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id,omitempty"`
}

// SweepResponse reports how many trips a sweep evaluated.
type SweepResponse struct {
	TripsEvaluated int `json:"trips_evaluated"`
}

// Sweep godoc
// @Summary Re-evaluate alert rules for all ongoing trips
// @Description Runs the full rule set per ongoing trip; one trip's failure does not abort the sweep
// @Tags alerts
// @Produce json
// @Success 200 {object} SweepResponse
// @Failure 500 {object} ErrorResponse
// @Router /alerts/sweep [post]
func (h *AlertHandler) Sweep(c *fiber.Ctx) error {
	evaluated, err := h.evaluator.Sweep(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to sweep ongoing trips",
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(SweepResponse{TripsEvaluated: evaluated})
}

// Acknowledge godoc
// @Summary Acknowledge an active alert
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	return h.applyTransition(c, h.lifecycle.Acknowledge)
}

// Resolve godoc
// @Summary Manually resolve an open alert
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	return h.applyTransition(c, h.lifecycle.Resolve)
}

// Dismiss godoc
// @Summary Dismiss an alert as a false positive
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /alerts/{id}/dismiss [post]
func (h *AlertHandler) Dismiss(c *fiber.Ctx) error {
	return h.applyTransition(c, h.lifecycle.Dismiss)
}

// ListByTrip godoc
// @Summary List all alerts for a trip
// @Tags alerts
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {array} domain.TripAlert
// @Failure 500 {object} ErrorResponse
// @Router /trips/{id}/alerts [get]
func (h *AlertHandler) ListByTrip(c *fiber.Ctx) error {
	alerts, err := h.lifecycle.ListByTrip(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load trip alerts",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if alerts == nil {
		alerts = []domain.TripAlert{}
	}
	return c.JSON(alerts)
}

func (h *AlertHandler) applyTransition(c *fiber.Ctx, apply func(ctx context.Context, id string) error) error {
	err := apply(c.Context(), c.Params("id"))
	if err == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if errors.Is(err, service.ErrAlertNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "alert not found",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if errors.Is(err, service.ErrInvalidAlertTransition) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "failed to update alert",
		RayID:   c.Locals("requestid").(string),
	})
}
