package handler

import (
	"errors"

	"fleetops/internal/features/shipments/domain"
	"fleetops/internal/features/shipments/service"

	"github.com/gofiber/fiber/v2"
)

// ShipmentHandler handles HTTP requests for shipment status operations.
type ShipmentHandler struct {
	statusService *service.StatusService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(statusService *service.StatusService) *ShipmentHandler {
	return &ShipmentHandler{
		statusService: statusService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// ChangeStatusRequest is the body for a main-status change.
type ChangeStatusRequest struct {
	// Status is the target main status.
	Status string `json:"status"`
	// Source is the change origin: manual (default) or api.
	Source string `json:"source,omitempty"`
	// Notes is an optional free-text annotation stored in the history entry.
	Notes string `json:"notes,omitempty"`
}

// AdvanceSubStatusRequest is the body for a sub-status advancement.
type AdvanceSubStatusRequest struct {
	// SubStatus is the target sub-status within the current main status.
	SubStatus string `json:"sub_status"`
	Source    string `json:"source,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func changeSource(raw string) domain.ChangeSource {
	if raw == string(domain.SourceAPI) {
		return domain.SourceAPI
	}
	return domain.SourceManual
}

// ChangeStatus godoc
// @Summary Change a shipment's main status
// @Description Validates and applies a main-status transition; a rejected transition returns 422 with the reason
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Param request body ChangeStatusRequest true "Target status"
// @Success 200 {object} domain.TransitionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} domain.TransitionResult
// @Router /shipments/{id}/status [patch]
func (h *ShipmentHandler) ChangeStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "status is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	result, err := h.statusService.ChangeStatus(c.Context(), id, domain.Status(req.Status), changeSource(req.Source), req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "shipment not found",
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to change shipment status",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if !result.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}

// AdvanceSubStatus godoc
// @Summary Advance a shipment's sub-status
// @Description Advances the sub-status by exactly one step within the current main status
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Param request body AdvanceSubStatusRequest true "Target sub-status"
// @Success 200 {object} domain.TransitionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} domain.TransitionResult
// @Router /shipments/{id}/sub-status [patch]
func (h *ShipmentHandler) AdvanceSubStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req AdvanceSubStatusRequest
	if err := c.BodyParser(&req); err != nil || req.SubStatus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "sub_status is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	result, err := h.statusService.AdvanceSubStatus(c.Context(), id, req.SubStatus, changeSource(req.Source), req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "shipment not found",
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to advance sub-status",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if !result.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}

// GetHistory godoc
// @Summary Get a shipment's status history
// @Description Returns the append-only status audit trail ordered by changed_at ascending
// @Tags shipments
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {array} domain.StatusHistoryEntry
// @Failure 500 {object} ErrorResponse
// @Router /shipments/{id}/history [get]
func (h *ShipmentHandler) GetHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	entries, err := h.statusService.History(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load status history",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if entries == nil {
		entries = []domain.StatusHistoryEntry{}
	}
	return c.JSON(entries)
}
