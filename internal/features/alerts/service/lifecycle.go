package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/features/alerts/domain"
	"fleetops/internal/features/alerts/ports"
)

var (
	// ErrAlertNotFound indicates the alert id does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrInvalidAlertTransition indicates the lifecycle change is not
	// allowed from the alert's current status.
	ErrInvalidAlertTransition = errors.New("invalid alert status transition")
)

// LifecycleService handles manual alert state changes. The evaluator owns
// automatic resolution; operators acknowledge, resolve and dismiss here.
type LifecycleService struct {
	alerts ports.AlertRepository
	trips  ports.TripReader
	now    func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(alerts ports.AlertRepository, trips ports.TripReader) *LifecycleService {
	return &LifecycleService{
		alerts: alerts,
		trips:  trips,
		now:    time.Now,
	}
}

// Acknowledge moves an active alert to acknowledged. The alert stays open
// and keeps counting against the trip.
func (s *LifecycleService) Acknowledge(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.AlertStatusAcknowledged, func(cur domain.AlertStatus) bool {
		return cur == domain.AlertStatusActive
	})
}

// Resolve closes an open alert manually.
func (s *LifecycleService) Resolve(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.AlertStatusResolved, func(cur domain.AlertStatus) bool {
		return cur.IsOpen()
	})
}

// Dismiss closes an alert as a false positive. Resolved alerts stay resolved.
func (s *LifecycleService) Dismiss(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.AlertStatusDismissed, func(cur domain.AlertStatus) bool {
		return cur != domain.AlertStatusResolved && cur != domain.AlertStatusDismissed
	})
}

// ListByTrip returns all alerts for the trip, newest first.
func (s *LifecycleService) ListByTrip(ctx context.Context, tripID string) ([]domain.TripAlert, error) {
	return s.alerts.ListByTrip(ctx, tripID)
}

func (s *LifecycleService) transition(ctx context.Context, id string, to domain.AlertStatus, allowed func(domain.AlertStatus) bool) error {
	alert, err := s.alerts.GetAlert(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load alert %s: %w", id, err)
	}
	if alert == nil {
		return ErrAlertNotFound
	}
	if !allowed(alert.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidAlertTransition, alert.Status, to)
	}

	var resolvedAt *time.Time
	if !to.IsOpen() {
		at := s.now()
		resolvedAt = &at
	}
	if err := s.alerts.UpdateStatus(ctx, id, to, resolvedAt); err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}

	count, err := s.alerts.CountOpen(ctx, alert.TripID)
	if err != nil {
		return fmt.Errorf("failed to count open alerts: %w", err)
	}
	if err := s.trips.UpdateActiveAlertCount(ctx, alert.TripID, count); err != nil {
		return fmt.Errorf("failed to update alert count: %w", err)
	}
	return nil
}
