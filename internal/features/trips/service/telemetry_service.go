package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/core/logger"
	"fleetops/internal/features/trips/domain"
	"fleetops/internal/features/trips/ports"

	"go.uber.org/zap"
)

var (
	// ErrTripNotFound is returned when the trip id is unknown.
	ErrTripNotFound = errors.New("trip not found")
	// ErrTripNotOngoing is returned when telemetry arrives for a trip that
	// is not being monitored.
	ErrTripNotOngoing = errors.New("trip is not ongoing")
	// ErrInvalidCoordinates is returned for out-of-range latitude/longitude.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// TelemetryService ingests location points and triggers the synchronous
// per-trip alert evaluation and geofence check. Within one trip the
// evaluation always observes the just-written point.
type TelemetryService struct {
	repo      ports.TripRepository
	evaluator ports.AlertEvaluator
	geofence  ports.GeofenceMonitor
	now       func() time.Time
}

// NewTelemetryService creates a new TelemetryService.
func NewTelemetryService(repo ports.TripRepository, evaluator ports.AlertEvaluator, geofence ports.GeofenceMonitor) *TelemetryService {
	return &TelemetryService{
		repo:      repo,
		evaluator: evaluator,
		geofence:  geofence,
		now:       time.Now,
	}
}

// Ingest validates and stores one telemetry sample, then runs the alert
// evaluator and geofence monitor for the trip.
func (s *TelemetryService) Ingest(ctx context.Context, point domain.LocationPoint) error {
	if point.Latitude < -90 || point.Latitude > 90 || point.Longitude < -180 || point.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	if point.EventTime.IsZero() {
		point.EventTime = s.now()
	}
	if point.Source == "" {
		point.Source = domain.SourceGPS
	}

	trip, err := s.repo.GetTrip(ctx, point.TripID)
	if err != nil {
		return fmt.Errorf("failed to load trip %s: %w", point.TripID, err)
	}
	if trip == nil {
		return ErrTripNotFound
	}
	if !trip.Status.IsOngoing() {
		return ErrTripNotOngoing
	}

	if err := s.repo.InsertLocation(ctx, point); err != nil {
		return fmt.Errorf("failed to insert location for trip %s: %w", point.TripID, err)
	}

	pingAt := s.now()
	if err := s.repo.TouchLastPing(ctx, point.TripID, pingAt); err != nil {
		return fmt.Errorf("failed to update last ping for trip %s: %w", point.TripID, err)
	}
	trip.LastPingAt = &pingAt

	if err := s.evaluator.EvaluateTrip(ctx, *trip, &point); err != nil {
		return fmt.Errorf("alert evaluation failed for trip %s: %w", point.TripID, err)
	}

	if err := s.geofence.Check(ctx, *trip, point); err != nil {
		// Geofence auto-advance is best effort; a failure must not reject
		// an otherwise ingested point.
		logger.Get().Warn("Geofence check failed",
			zap.String("trip_id", point.TripID),
			zap.Error(err),
		)
	}

	return nil
}

// RecentLocations returns up to limit samples for the trip, newest first.
func (s *TelemetryService) RecentLocations(ctx context.Context, tripID string, limit int) ([]domain.LocationPoint, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	points, err := s.repo.RecentLocations(ctx, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations for trip %s: %w", tripID, err)
	}
	return points, nil
}

// GetTrip returns the trip by id.
func (s *TelemetryService) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	trip, err := s.repo.GetTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip %s: %w", id, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	return trip, nil
}
