package adapters

import (
	"context"
	"errors"
	"fmt"

	"fleetops/internal/features/shipments/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresShipmentRepository implements ports.ShipmentRepository on pgx.
type PostgresShipmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresShipmentRepository creates a new PostgresShipmentRepository.
func NewPostgresShipmentRepository(pool *pgxpool.Pool) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{pool: pool}
}

// GetShipment returns the shipment by id, or nil when it does not exist.
func (r *PostgresShipmentRepository) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	query := `
		SELECT id, status, sub_status, trip_id,
		       consignee_code, material_id, pickup_location, drop_location,
		       delayed, delay_percent, created_at, updated_at
		FROM shipments
		WHERE id = $1
	`

	var s domain.Shipment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Status, &s.SubStatus, &s.TripID,
		&s.ConsigneeCode, &s.MaterialID, &s.PickupLocation, &s.DropLocation,
		&s.Delayed, &s.DelayPercent, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shipment %s: %w", id, err)
	}
	return &s, nil
}

// GetTripLink returns the trip linkage fields, or nil when the trip is unknown.
func (r *PostgresShipmentRepository) GetTripLink(ctx context.Context, tripID string) (*domain.TripLink, error) {
	query := `SELECT id, COALESCE(vehicle_id, '') FROM trips WHERE id = $1`

	var link domain.TripLink
	err := r.pool.QueryRow(ctx, query, tripID).Scan(&link.ID, &link.VehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query trip link %s: %w", tripID, err)
	}
	return &link, nil
}

// UpdateStatusWithHistory writes the status fields and appends the history
// entry inside one transaction.
func (r *PostgresShipmentRepository) UpdateStatusWithHistory(ctx context.Context, shipment *domain.Shipment, entry *domain.StatusHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE shipments
		SET status = $2, sub_status = $3, updated_at = $4
		WHERE id = $1
	`, shipment.ID, shipment.Status, shipment.SubStatus, shipment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update shipment %s: %w", shipment.ID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shipment_status_history
			(id, shipment_id, previous_status, new_status,
			 previous_sub_status, new_sub_status, changed_at, change_source, notes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.ShipmentID, entry.PreviousStatus, entry.NewStatus,
		entry.PreviousSubStatus, entry.NewSubStatus, entry.ChangedAt,
		entry.ChangeSource, entry.Notes, entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to append history for shipment %s: %w", shipment.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status change for shipment %s: %w", shipment.ID, err)
	}
	return nil
}

// ListHistory returns the shipment's history ordered by changed_at ascending.
func (r *PostgresShipmentRepository) ListHistory(ctx context.Context, shipmentID string) ([]domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, shipment_id, previous_status, new_status,
		       previous_sub_status, new_sub_status, changed_at, change_source, notes, metadata
		FROM shipment_status_history
		WHERE shipment_id = $1
		ORDER BY changed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for shipment %s: %w", shipmentID, err)
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.ShipmentID, &e.PreviousStatus, &e.NewStatus,
			&e.PreviousSubStatus, &e.NewSubStatus, &e.ChangedAt,
			&e.ChangeSource, &e.Notes, &e.Metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}
