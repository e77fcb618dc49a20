package handler

import (
	"fleetops/internal/features/compliance/domain"
	"fleetops/internal/features/compliance/service"

	"github.com/gofiber/fiber/v2"
)

// ComplianceHandler handles HTTP requests for compliance scanning.
type ComplianceHandler struct {
	scanner *service.Scanner
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(scanner *service.Scanner) *ComplianceHandler {
	return &ComplianceHandler{scanner: scanner}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id,omitempty"`
}

// Scan godoc
// @Summary Run a compliance expiry scan
// @Description Classifies every tracked vehicle/driver document and raises, updates or resolves compliance alerts
// @Tags compliance
// @Produce json
// @Success 200 {object} service.ScanResult
// @Failure 500 {object} ErrorResponse
// @Router /compliance/scan [post]
func (h *ComplianceHandler) Scan(c *fiber.Ctx) error {
	result, err := h.scanner.Scan(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "compliance scan failed",
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(result)
}

// ListOpenAlerts godoc
// @Summary List open compliance alerts
// @Tags compliance
// @Produce json
// @Success 200 {array} domain.ComplianceAlert
// @Failure 500 {object} ErrorResponse
// @Router /compliance/alerts [get]
func (h *ComplianceHandler) ListOpenAlerts(c *fiber.Ctx) error {
	alerts, err := h.scanner.ListOpenAlerts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load compliance alerts",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if alerts == nil {
		alerts = []domain.ComplianceAlert{}
	}
	return c.JSON(alerts)
}
