package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetops/internal/features/shipments/domain"
	"fleetops/internal/features/shipments/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockShipmentRepository is an in-memory ShipmentRepository for testing.
type mockShipmentRepository struct {
	shipments map[string]*domain.Shipment
	trips     map[string]*domain.TripLink
	history   []domain.StatusHistoryEntry
}

func (m *mockShipmentRepository) GetShipment(_ context.Context, id string) (*domain.Shipment, error) {
	s, found := m.shipments[id]
	if !found {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *mockShipmentRepository) GetTripLink(_ context.Context, tripID string) (*domain.TripLink, error) {
	return m.trips[tripID], nil
}

func (m *mockShipmentRepository) UpdateStatusWithHistory(_ context.Context, shipment *domain.Shipment, entry *domain.StatusHistoryEntry) error {
	copied := *shipment
	m.shipments[shipment.ID] = &copied
	m.history = append(m.history, *entry)
	return nil
}

func (m *mockShipmentRepository) ListHistory(_ context.Context, shipmentID string) ([]domain.StatusHistoryEntry, error) {
	var entries []domain.StatusHistoryEntry
	for _, e := range m.history {
		if e.ShipmentID == shipmentID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func newTestApp(repo *mockShipmentRepository) *fiber.App {
	handler := NewShipmentHandler(service.NewStatusService(repo))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Patch("/shipments/:id/status", handler.ChangeStatus)
	app.Patch("/shipments/:id/sub-status", handler.AdvanceSubStatus)
	app.Get("/shipments/:id/history", handler.GetHistory)
	return app
}

func seededRepo(status domain.Status) *mockShipmentRepository {
	tripID := "trip-1"
	return &mockShipmentRepository{
		shipments: map[string]*domain.Shipment{
			"shp-1": {
				ID:             "shp-1",
				Status:         status,
				TripID:         &tripID,
				ConsigneeCode:  "CNS-001",
				MaterialID:     "MAT-042",
				PickupLocation: "Bhiwandi Hub",
				DropLocation:   "Nagpur Depot",
			},
		},
		trips: map[string]*domain.TripLink{
			"trip-1": {ID: "trip-1", VehicleID: "veh-1"},
		},
	}
}

// TestShipmentHandler_ChangeStatus_Success verifies a valid transition returns 200.
func TestShipmentHandler_ChangeStatus_Success(t *testing.T) {
	app := newTestApp(seededRepo(domain.StatusCreated))

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest("PATCH", "/shipments/shp-1/status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result domain.TransitionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Valid)
}

// TestShipmentHandler_ChangeStatus_Rejected verifies a rejected transition returns 422.
func TestShipmentHandler_ChangeStatus_Rejected(t *testing.T) {
	app := newTestApp(seededRepo(domain.StatusCreated))

	body := strings.NewReader(`{"status":"delivered"}`)
	req := httptest.NewRequest("PATCH", "/shipments/shp-1/status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var result domain.TransitionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)
}

// TestShipmentHandler_ChangeStatus_NotFound verifies unknown shipments return 404.
func TestShipmentHandler_ChangeStatus_NotFound(t *testing.T) {
	app := newTestApp(seededRepo(domain.StatusCreated))

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest("PATCH", "/shipments/missing/status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// TestShipmentHandler_ChangeStatus_MissingStatus verifies an empty body returns 400.
func TestShipmentHandler_ChangeStatus_MissingStatus(t *testing.T) {
	app := newTestApp(seededRepo(domain.StatusCreated))

	req := httptest.NewRequest("PATCH", "/shipments/shp-1/status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestShipmentHandler_AdvanceSubStatus verifies sub-status advancement over HTTP.
func TestShipmentHandler_AdvanceSubStatus(t *testing.T) {
	app := newTestApp(seededRepo(domain.StatusInPickup))

	body := strings.NewReader(`{"sub_status":"vehicle_placed"}`)
	req := httptest.NewRequest("PATCH", "/shipments/shp-1/sub-status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// TestShipmentHandler_GetHistory verifies the history endpoint.
func TestShipmentHandler_GetHistory(t *testing.T) {
	repo := seededRepo(domain.StatusCreated)
	app := newTestApp(repo)

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest("PATCH", "/shipments/shp-1/status", body)
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/shipments/shp-1/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []domain.StatusHistoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusConfirmed, entries[0].NewStatus)
}
