package ports

import (
	"context"

	"fleetops/internal/features/shipments/domain"
)

// ShipmentRepository defines the persistence operations for shipments and
// their status history.
type ShipmentRepository interface {
	// GetShipment returns the shipment by id, or nil when it does not exist.
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)

	// GetTripLink returns the trip linkage fields for the given trip id,
	// or nil when the trip does not exist.
	GetTripLink(ctx context.Context, tripID string) (*domain.TripLink, error)

	// UpdateStatusWithHistory writes the shipment's new status fields and
	// appends the history entry in a single transaction. Either both are
	// applied or neither is.
	UpdateStatusWithHistory(ctx context.Context, shipment *domain.Shipment, entry *domain.StatusHistoryEntry) error

	// ListHistory returns the shipment's history entries ordered by
	// changed_at ascending.
	ListHistory(ctx context.Context, shipmentID string) ([]domain.StatusHistoryEntry, error)
}
