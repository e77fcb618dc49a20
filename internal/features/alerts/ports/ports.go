package ports

import (
	"context"
	"time"

	"fleetops/internal/features/alerts/domain"
	tripsdomain "fleetops/internal/features/trips/domain"
)

// AlertRepository defines the persistence operations for trip alerts.
type AlertRepository interface {
	// FindOpenByType returns the active or acknowledged alert of the given
	// type for the trip, or nil when none exists.
	FindOpenByType(ctx context.Context, tripID string, alertType domain.AlertType) (*domain.TripAlert, error)

	// Insert stores a new alert.
	Insert(ctx context.Context, alert *domain.TripAlert) error

	// ResolveByType marks all active alerts of the given type for the trip
	// as resolved at the given time.
	ResolveByType(ctx context.Context, tripID string, alertType domain.AlertType, at time.Time) error

	// CountOpen returns the number of active or acknowledged alerts for the trip.
	CountOpen(ctx context.Context, tripID string) (int, error)

	// GetAlert returns the alert by id, or nil when it does not exist.
	GetAlert(ctx context.Context, id string) (*domain.TripAlert, error)

	// UpdateStatus changes the lifecycle state of one alert.
	UpdateStatus(ctx context.Context, id string, status domain.AlertStatus, resolvedAt *time.Time) error

	// ListByTrip returns all alerts for the trip, newest first.
	ListByTrip(ctx context.Context, tripID string) ([]domain.TripAlert, error)
}

// TripReader provides the trip, telemetry and lane reads the evaluator needs.
type TripReader interface {
	ListOngoing(ctx context.Context) ([]tripsdomain.Trip, error)
	RecentLocations(ctx context.Context, tripID string, limit int) ([]tripsdomain.LocationPoint, error)
	LatestLocation(ctx context.Context, tripID string) (*tripsdomain.LocationPoint, error)
	GetLane(ctx context.Context, laneID string) (*tripsdomain.Lane, error)

	// UpdateActiveAlertCount overwrites the trip's denormalized open-alert
	// counter with a freshly aggregated value.
	UpdateActiveAlertCount(ctx context.Context, tripID string, count int) error
}

// SettingsProvider loads evaluation thresholds from the settings store.
// Implementations fall back to defaults on any failure; Load never errors.
type SettingsProvider interface {
	Load(ctx context.Context) domain.Thresholds
}
