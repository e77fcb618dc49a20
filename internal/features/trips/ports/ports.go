package ports

import (
	"context"
	"time"

	"fleetops/internal/features/trips/domain"
)

// TripRepository defines the persistence operations for trips and their
// telemetry time series.
type TripRepository interface {
	// GetTrip returns the trip by id, or nil when it does not exist.
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)

	// ListOngoing returns all trips whose status is monitored.
	ListOngoing(ctx context.Context) ([]domain.Trip, error)

	// InsertLocation appends one telemetry sample.
	InsertLocation(ctx context.Context, point domain.LocationPoint) error

	// RecentLocations returns up to limit samples for the trip, newest first.
	RecentLocations(ctx context.Context, tripID string, limit int) ([]domain.LocationPoint, error)

	// LatestLocation returns the most recent sample, or nil when the trip
	// has no telemetry at all.
	LatestLocation(ctx context.Context, tripID string) (*domain.LocationPoint, error)

	// TouchLastPing records the time of the latest successful ingestion.
	TouchLastPing(ctx context.Context, tripID string, at time.Time) error
}

// LaneRepository defines the persistence operations for lanes.
type LaneRepository interface {
	// GetLane returns the lane by id, or nil when it does not exist.
	GetLane(ctx context.Context, id string) (*domain.Lane, error)

	// UpdateRoute replaces the cached route data for the lane.
	UpdateRoute(ctx context.Context, laneID string, route domain.RouteData) error
}

// RouteProvider fetches route geometry from an external routing provider.
type RouteProvider interface {
	FetchRoute(ctx context.Context, origin, destination string) (*domain.RouteData, error)
}

// AlertEvaluator evaluates alert rules for one trip. Implemented by the
// alerts feature; invoked synchronously after each ingested point.
type AlertEvaluator interface {
	EvaluateTrip(ctx context.Context, trip domain.Trip, current *domain.LocationPoint) error
}

// GeofenceMonitor checks the current position against pickup/drop zones and
// may auto-advance the linked shipment.
type GeofenceMonitor interface {
	Check(ctx context.Context, trip domain.Trip, current domain.LocationPoint) error
}
