package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	alertsdomain "fleetops/internal/features/alerts/domain"
	"fleetops/internal/features/compliance/domain"
	"fleetops/internal/features/compliance/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubComplianceRepository serves a fixed document list.
type stubComplianceRepository struct {
	documents []domain.DocumentRecord
	alerts    []domain.ComplianceAlert
}

func (s *stubComplianceRepository) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	return s.documents, nil
}

func (s *stubComplianceRepository) GetDocument(_ context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.DocumentRecord, error) {
	for _, d := range s.documents {
		if d.EntityType == entityType && d.EntityID == entityID && d.DocumentType == documentType {
			copied := d
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubComplianceRepository) FindOpenAlert(_ context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.ComplianceAlert, error) {
	for i := range s.alerts {
		a := s.alerts[i]
		if a.EntityType == entityType && a.EntityID == entityID &&
			a.DocumentType == documentType && a.Status != domain.ComplianceResolved {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *stubComplianceRepository) Insert(_ context.Context, alert *domain.ComplianceAlert) error {
	s.alerts = append(s.alerts, *alert)
	return nil
}

func (s *stubComplianceRepository) UpdateLevel(_ context.Context, id string, level domain.AlertLevel, expiry time.Time) error {
	return nil
}

func (s *stubComplianceRepository) Resolve(_ context.Context, id string, at time.Time) error {
	return nil
}

func (s *stubComplianceRepository) ListOpenAlerts(_ context.Context) ([]domain.ComplianceAlert, error) {
	var out []domain.ComplianceAlert
	for _, a := range s.alerts {
		if a.Status != domain.ComplianceResolved {
			out = append(out, a)
		}
	}
	return out, nil
}

type defaultSettings struct{}

func (defaultSettings) Load(_ context.Context) alertsdomain.Thresholds {
	return alertsdomain.DefaultThresholds()
}

func newTestApp(repo *stubComplianceRepository) *fiber.App {
	h := NewComplianceHandler(service.NewScanner(repo, defaultSettings{}))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Post("/compliance/scan", h.Scan)
	app.Get("/compliance/alerts", h.ListOpenAlerts)
	return app
}

func TestScanEndpoint(t *testing.T) {
	repo := &stubComplianceRepository{documents: []domain.DocumentRecord{{
		EntityType:   domain.EntityVehicle,
		EntityID:     "vehicle-1",
		DocumentType: domain.DocPermit,
		ExpiryDate:   time.Now().AddDate(0, 0, 3),
	}}}
	app := newTestApp(repo)

	resp, err := app.Test(httptest.NewRequest("POST", "/compliance/scan", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body service.ScanResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.DocumentsScanned)
	assert.Equal(t, 1, body.AlertsRaised)
}

func TestListOpenAlertsEndpoint_Empty(t *testing.T) {
	app := newTestApp(&stubComplianceRepository{})

	resp, err := app.Test(httptest.NewRequest("GET", "/compliance/alerts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []domain.ComplianceAlert
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body)
}
