package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/features/trips/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTripRepository implements ports.TripRepository and
// ports.LaneRepository on pgx. It also serves the alert evaluator's trip
// reads (ongoing sweep, counter recompute).
type PostgresTripRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTripRepository creates a new PostgresTripRepository.
func NewPostgresTripRepository(pool *pgxpool.Pool) *PostgresTripRepository {
	return &PostgresTripRepository{pool: pool}
}

const tripColumns = `
	id, status, shipment_id, COALESCE(vehicle_id, ''), COALESCE(driver_id, ''),
	COALESCE(tracking_asset_id, ''), lane_id,
	pickup_lat, pickup_lng, drop_lat, drop_lng,
	planned_start, planned_end, planned_eta, actual_start, actual_end,
	last_ping_at, active_alert_count
`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	err := row.Scan(
		&t.ID, &t.Status, &t.ShipmentID, &t.VehicleID, &t.DriverID,
		&t.TrackingAssetID, &t.LaneID,
		&t.PickupLat, &t.PickupLng, &t.DropLat, &t.DropLng,
		&t.PlannedStart, &t.PlannedEnd, &t.PlannedETA, &t.ActualStart, &t.ActualEnd,
		&t.LastPingAt, &t.ActiveAlertCount,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTrip returns the trip by id, or nil when it does not exist.
func (r *PostgresTripRepository) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	trip, err := scanTrip(r.pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query trip %s: %w", id, err)
	}
	return trip, nil
}

// ListOngoing returns all trips in a monitored status.
func (r *PostgresTripRepository) ListOngoing(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE status IN ('ongoing', 'in_transit', 'started')`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ongoing trips: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trip rows: %w", err)
	}
	return trips, nil
}

// InsertLocation appends one telemetry sample.
func (r *PostgresTripRepository) InsertLocation(ctx context.Context, p domain.LocationPoint) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trip_locations
			(trip_id, latitude, longitude, speed_kmh, heading, source, event_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.TripID, p.Latitude, p.Longitude, p.SpeedKmh, p.Heading, p.Source, p.EventTime)
	if err != nil {
		return fmt.Errorf("failed to insert location for trip %s: %w", p.TripID, err)
	}
	return nil
}

// RecentLocations returns up to limit samples, newest first.
func (r *PostgresTripRepository) RecentLocations(ctx context.Context, tripID string, limit int) ([]domain.LocationPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT trip_id, latitude, longitude, speed_kmh, heading, source, event_time
		FROM trip_locations
		WHERE trip_id = $1
		ORDER BY event_time DESC
		LIMIT $2
	`, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations for trip %s: %w", tripID, err)
	}
	defer rows.Close()

	var points []domain.LocationPoint
	for rows.Next() {
		var p domain.LocationPoint
		if err := rows.Scan(&p.TripID, &p.Latitude, &p.Longitude, &p.SpeedKmh, &p.Heading, &p.Source, &p.EventTime); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read location rows: %w", err)
	}
	return points, nil
}

// LatestLocation returns the most recent sample, or nil when none exist.
func (r *PostgresTripRepository) LatestLocation(ctx context.Context, tripID string) (*domain.LocationPoint, error) {
	var p domain.LocationPoint
	err := r.pool.QueryRow(ctx, `
		SELECT trip_id, latitude, longitude, speed_kmh, heading, source, event_time
		FROM trip_locations
		WHERE trip_id = $1
		ORDER BY event_time DESC
		LIMIT 1
	`, tripID).Scan(&p.TripID, &p.Latitude, &p.Longitude, &p.SpeedKmh, &p.Heading, &p.Source, &p.EventTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest location for trip %s: %w", tripID, err)
	}
	return &p, nil
}

// TouchLastPing records the time of the latest successful ingestion.
func (r *PostgresTripRepository) TouchLastPing(ctx context.Context, tripID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE trips SET last_ping_at = $2 WHERE id = $1`, tripID, at)
	if err != nil {
		return fmt.Errorf("failed to update last ping for trip %s: %w", tripID, err)
	}
	return nil
}

// UpdateActiveAlertCount overwrites the denormalized open-alert counter.
func (r *PostgresTripRepository) UpdateActiveAlertCount(ctx context.Context, tripID string, count int) error {
	_, err := r.pool.Exec(ctx, `UPDATE trips SET active_alert_count = $2 WHERE id = $1`, tripID, count)
	if err != nil {
		return fmt.Errorf("failed to update alert count for trip %s: %w", tripID, err)
	}
	return nil
}

// GetLane returns the lane by id, or nil when it does not exist.
func (r *PostgresTripRepository) GetLane(ctx context.Context, id string) (*domain.Lane, error) {
	var l domain.Lane
	err := r.pool.QueryRow(ctx, `
		SELECT id, origin, destination, COALESCE(encoded_polyline, ''),
		       total_distance_meters, total_duration_seconds, waypoints, updated_at
		FROM lanes
		WHERE id = $1
	`, id).Scan(&l.ID, &l.Origin, &l.Destination, &l.EncodedPolyline,
		&l.TotalDistanceMeters, &l.TotalDurationSeconds, &l.Waypoints, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lane %s: %w", id, err)
	}
	return &l, nil
}

// UpdateRoute replaces the cached route data for the lane.
func (r *PostgresTripRepository) UpdateRoute(ctx context.Context, laneID string, route domain.RouteData) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lanes
		SET encoded_polyline = $2, total_distance_meters = $3,
		    total_duration_seconds = $4, updated_at = NOW()
		WHERE id = $1
	`, laneID, route.EncodedPolyline, route.TotalDistanceMeters, route.TotalDurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to update route for lane %s: %w", laneID, err)
	}
	return nil
}
