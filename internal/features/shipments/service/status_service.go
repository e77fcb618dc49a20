package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/core/logger"
	"fleetops/internal/features/shipments/domain"
	"fleetops/internal/features/shipments/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrShipmentNotFound is returned when the shipment id is unknown.
	ErrShipmentNotFound = errors.New("shipment not found")
)

// StatusService validates and applies shipment status changes. Every applied
// change appends exactly one history entry atomically with the status write.
type StatusService struct {
	repo ports.ShipmentRepository
	now  func() time.Time
}

// NewStatusService creates a new StatusService.
func NewStatusService(repo ports.ShipmentRepository) *StatusService {
	return &StatusService{
		repo: repo,
		now:  time.Now,
	}
}

// ChangeStatus moves the shipment to the next main status. A main-status
// change always resets the sub-status to null. When validation fails the
// returned result carries the reason and nothing is written.
func (s *StatusService) ChangeStatus(ctx context.Context, id string, next domain.Status, source domain.ChangeSource, notes string) (domain.TransitionResult, error) {
	shipment, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return domain.TransitionResult{}, fmt.Errorf("failed to load shipment %s: %w", id, err)
	}
	if shipment == nil {
		return domain.TransitionResult{}, ErrShipmentNotFound
	}

	var trip *domain.TripLink
	if shipment.TripID != nil && *shipment.TripID != "" {
		trip, err = s.repo.GetTripLink(ctx, *shipment.TripID)
		if err != nil {
			return domain.TransitionResult{}, fmt.Errorf("failed to load trip link for shipment %s: %w", id, err)
		}
	}

	result := domain.ValidateStatusTransition(shipment, next, trip)
	if !result.Valid {
		logger.Get().Debug("Status transition rejected",
			zap.String("shipment_id", id),
			zap.String("from", string(shipment.Status)),
			zap.String("to", string(next)),
			zap.String("reason", result.Message),
		)
		return result, nil
	}

	changedAt := s.now()
	entry := &domain.StatusHistoryEntry{
		ID:                uuid.NewString(),
		ShipmentID:        shipment.ID,
		PreviousStatus:    shipment.Status,
		NewStatus:         next,
		PreviousSubStatus: shipment.SubStatus,
		NewSubStatus:      nil,
		ChangedAt:         changedAt,
		ChangeSource:      source,
		Notes:             notes,
	}

	shipment.Status = next
	shipment.SubStatus = nil
	shipment.UpdatedAt = changedAt

	if err := s.repo.UpdateStatusWithHistory(ctx, shipment, entry); err != nil {
		return domain.TransitionResult{}, fmt.Errorf("failed to persist status change for shipment %s: %w", id, err)
	}

	logger.Get().Info("Shipment status changed",
		zap.String("shipment_id", id),
		zap.String("from", string(entry.PreviousStatus)),
		zap.String("to", string(next)),
		zap.String("source", string(source)),
	)
	return result, nil
}

// AdvanceSubStatus advances the sub-status within the shipment's current
// main status by exactly one step.
func (s *StatusService) AdvanceSubStatus(ctx context.Context, id string, next string, source domain.ChangeSource, notes string) (domain.TransitionResult, error) {
	shipment, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return domain.TransitionResult{}, fmt.Errorf("failed to load shipment %s: %w", id, err)
	}
	if shipment == nil {
		return domain.TransitionResult{}, ErrShipmentNotFound
	}

	result := domain.ValidateSubStatusProgression(shipment.Status, shipment.SubStatus, next)
	if !result.Valid {
		return result, nil
	}

	changedAt := s.now()
	entry := &domain.StatusHistoryEntry{
		ID:                uuid.NewString(),
		ShipmentID:        shipment.ID,
		PreviousStatus:    shipment.Status,
		NewStatus:         shipment.Status,
		PreviousSubStatus: shipment.SubStatus,
		NewSubStatus:      &next,
		ChangedAt:         changedAt,
		ChangeSource:      source,
		Notes:             notes,
	}

	shipment.SubStatus = &next
	shipment.UpdatedAt = changedAt

	if err := s.repo.UpdateStatusWithHistory(ctx, shipment, entry); err != nil {
		return domain.TransitionResult{}, fmt.Errorf("failed to persist sub-status change for shipment %s: %w", id, err)
	}

	return result, nil
}

// History returns the shipment's status history in chronological order.
func (s *StatusService) History(ctx context.Context, id string) ([]domain.StatusHistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for shipment %s: %w", id, err)
	}
	return entries, nil
}
