package service

import (
	"context"
	"errors"
	"testing"

	"fleetops/internal/features/shipments/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockShipmentRepository is an in-memory ShipmentRepository for testing.
type mockShipmentRepository struct {
	shipments map[string]*domain.Shipment
	trips     map[string]*domain.TripLink
	history   []domain.StatusHistoryEntry
	writeErr  error
}

func newMockShipmentRepository() *mockShipmentRepository {
	return &mockShipmentRepository{
		shipments: map[string]*domain.Shipment{},
		trips:     map[string]*domain.TripLink{},
	}
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
	if m.writeErr != nil {
		return m.writeErr
	}
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

func seedShipment(repo *mockShipmentRepository, status domain.Status) *domain.Shipment {
	tripID := "trip-1"
	s := &domain.Shipment{
		ID:             "shp-1",
		Status:         status,
		TripID:         &tripID,
		ConsigneeCode:  "CNS-001",
		MaterialID:     "MAT-042",
		PickupLocation: "Bhiwandi Hub",
		DropLocation:   "Nagpur Depot",
	}
	repo.shipments[s.ID] = s
	repo.trips[tripID] = &domain.TripLink{ID: tripID, VehicleID: "veh-1"}
	return s
}

// TestStatusService_ChangeStatus_Success verifies a valid transition writes
// status and exactly one history entry.
func TestStatusService_ChangeStatus_Success(t *testing.T) {
	repo := newMockShipmentRepository()
	seedShipment(repo, domain.StatusCreated)

	svc := NewStatusService(repo)

	result, err := svc.ChangeStatus(context.Background(), "shp-1", domain.StatusConfirmed, domain.SourceManual, "ops confirmed")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	assert.Equal(t, domain.StatusConfirmed, repo.shipments["shp-1"].Status)
	require.Len(t, repo.history, 1)
	assert.Equal(t, domain.StatusCreated, repo.history[0].PreviousStatus)
	assert.Equal(t, domain.StatusConfirmed, repo.history[0].NewStatus)
	assert.Equal(t, domain.SourceManual, repo.history[0].ChangeSource)
	assert.NotEmpty(t, repo.history[0].ID)
}

// TestStatusService_ChangeStatus_ResetsSubStatus verifies a main-status change
// nulls the sub-status.
func TestStatusService_ChangeStatus_ResetsSubStatus(t *testing.T) {
	repo := newMockShipmentRepository()
	s := seedShipment(repo, domain.StatusInPickup)
	ready := "ready_for_dispatch"
	s.SubStatus = &ready

	svc := NewStatusService(repo)

	result, err := svc.ChangeStatus(context.Background(), "shp-1", domain.StatusInTransit, domain.SourceGeofence, "")
	require.NoError(t, err)
	require.True(t, result.Valid)

	assert.Nil(t, repo.shipments["shp-1"].SubStatus)
	require.Len(t, repo.history, 1)
	require.NotNil(t, repo.history[0].PreviousSubStatus)
	assert.Equal(t, "ready_for_dispatch", *repo.history[0].PreviousSubStatus)
	assert.Nil(t, repo.history[0].NewSubStatus)
}

// TestStatusService_ChangeStatus_Rejected verifies no mutation on validation failure.
func TestStatusService_ChangeStatus_Rejected(t *testing.T) {
	repo := newMockShipmentRepository()
	s := seedShipment(repo, domain.StatusConfirmed)
	s.TripID = nil

	svc := NewStatusService(repo)

	result, err := svc.ChangeStatus(context.Background(), "shp-1", domain.StatusMapped, domain.SourceManual, "")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Shipment must be linked to a trip before mapping", result.Message)

	assert.Equal(t, domain.StatusConfirmed, repo.shipments["shp-1"].Status)
	assert.Empty(t, repo.history)
}

// TestStatusService_ChangeStatus_NotFound verifies unknown ids return
// ErrShipmentNotFound.
func TestStatusService_ChangeStatus_NotFound(t *testing.T) {
	svc := NewStatusService(newMockShipmentRepository())

	_, err := svc.ChangeStatus(context.Background(), "missing", domain.StatusConfirmed, domain.SourceManual, "")
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

// TestStatusService_ChangeStatus_WriteFailure verifies storage errors are wrapped.
func TestStatusService_ChangeStatus_WriteFailure(t *testing.T) {
	repo := newMockShipmentRepository()
	seedShipment(repo, domain.StatusCreated)
	repo.writeErr = errors.New("connection reset")

	svc := NewStatusService(repo)

	_, err := svc.ChangeStatus(context.Background(), "shp-1", domain.StatusConfirmed, domain.SourceManual, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist status change")
}

// TestStatusService_AdvanceSubStatus verifies step-wise sub-status advancement.
func TestStatusService_AdvanceSubStatus(t *testing.T) {
	repo := newMockShipmentRepository()
	seedShipment(repo, domain.StatusInPickup)

	svc := NewStatusService(repo)
	ctx := context.Background()

	result, err := svc.AdvanceSubStatus(ctx, "shp-1", "vehicle_placed", domain.SourceManual, "")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, repo.shipments["shp-1"].SubStatus)
	assert.Equal(t, "vehicle_placed", *repo.shipments["shp-1"].SubStatus)

	// Skipping a step is rejected and nothing further is written.
	result, err = svc.AdvanceSubStatus(ctx, "shp-1", "loading_completed", domain.SourceManual, "")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "vehicle_placed", *repo.shipments["shp-1"].SubStatus)
	assert.Len(t, repo.history, 1)
}

// TestStatusService_History verifies chronological history retrieval.
func TestStatusService_History(t *testing.T) {
	repo := newMockShipmentRepository()
	seedShipment(repo, domain.StatusCreated)

	svc := NewStatusService(repo)
	ctx := context.Background()

	_, err := svc.ChangeStatus(ctx, "shp-1", domain.StatusConfirmed, domain.SourceManual, "")
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, "shp-1", domain.StatusMapped, domain.SourceManual, "")
	require.NoError(t, err)

	entries, err := svc.History(ctx, "shp-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusConfirmed, entries[0].NewStatus)
	assert.Equal(t, domain.StatusMapped, entries[1].NewStatus)
}
