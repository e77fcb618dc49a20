package service

import (
	"context"
	"errors"
	"fmt"

	"fleetops/internal/core/logger"
	"fleetops/internal/features/trips/domain"
	"fleetops/internal/features/trips/ports"

	"go.uber.org/zap"
)

// ErrLaneNotFound is returned when the lane id is unknown.
var ErrLaneNotFound = errors.New("lane not found")

// LaneService refreshes the cached route geometry of lanes from the
// routing provider.
type LaneService struct {
	repo     ports.LaneRepository
	provider ports.RouteProvider
}

// NewLaneService creates a new LaneService.
func NewLaneService(repo ports.LaneRepository, provider ports.RouteProvider) *LaneService {
	return &LaneService{
		repo:     repo,
		provider: provider,
	}
}

// RefreshRoute fetches fresh route geometry for the lane and caches it.
func (s *LaneService) RefreshRoute(ctx context.Context, laneID string) (*domain.Lane, error) {
	lane, err := s.repo.GetLane(ctx, laneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lane %s: %w", laneID, err)
	}
	if lane == nil {
		return nil, ErrLaneNotFound
	}

	route, err := s.provider.FetchRoute(ctx, lane.Origin, lane.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route for lane %s: %w", laneID, err)
	}

	if err := s.repo.UpdateRoute(ctx, laneID, *route); err != nil {
		return nil, fmt.Errorf("failed to cache route for lane %s: %w", laneID, err)
	}

	lane.EncodedPolyline = route.EncodedPolyline
	lane.TotalDistanceMeters = route.TotalDistanceMeters
	lane.TotalDurationSeconds = route.TotalDurationSeconds

	logger.Get().Info("Lane route refreshed",
		zap.String("lane_id", laneID),
		zap.Int("distance_meters", route.TotalDistanceMeters),
		zap.Int("duration_seconds", route.TotalDurationSeconds),
	)
	return lane, nil
}
