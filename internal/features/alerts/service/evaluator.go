package service

import (
	"context"
	"fmt"
	"time"

	"fleetops/internal/core/geo"
	"fleetops/internal/core/logger"
	"fleetops/internal/features/alerts/domain"
	"fleetops/internal/features/alerts/ports"
	tripsdomain "fleetops/internal/features/trips/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// stoppageSpeedKmh is the speed at or below which a vehicle counts as
	// not moving.
	stoppageSpeedKmh = 5.0
	// stoppageRadiusMeters bounds how far apart samples may be while still
	// counting as the same stop. A deliberate approximation, not a precise
	// physical stoppage detector.
	stoppageRadiusMeters = 100.0
	// stoppageHistoryLimit bounds the backward scan through recent samples.
	stoppageHistoryLimit = 50

	// highDeviationMeters escalates a route deviation to high severity.
	highDeviationMeters = 1000.0
	// highStoppageMinutes escalates a stoppage to high severity.
	highStoppageMinutes = 60.0
	// criticalTrackingLostMinutes escalates a tracking loss to critical.
	criticalTrackingLostMinutes = 120.0
	// delay escalation steps.
	highDelayMinutes     = 120.0
	criticalDelayMinutes = 240.0
)

// Evaluator runs the per-trip alert rules: route deviation, stoppage,
// tracking loss, delay and idle detection. It is invoked synchronously after
// each ingested location point and in scheduled sweeps over all ongoing
// trips. Rule evaluation is idempotent: an open alert of the same type
// suppresses duplicates, and clearing conditions auto-resolve.
type Evaluator struct {
	alerts   ports.AlertRepository
	trips    ports.TripReader
	settings ports.SettingsProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(alerts ports.AlertRepository, trips ports.TripReader, settings ports.SettingsProvider) *Evaluator {
	return &Evaluator{
		alerts:   alerts,
		trips:    trips,
		settings: settings,
		now:      time.Now,
		logger:   logger.Get(),
	}
}

// EvaluateTrip evaluates all alert rules for one trip. current is the
// just-ingested point, or nil when running from a scheduled sweep. A storage
// failure aborts evaluation for this trip only.
func (e *Evaluator) EvaluateTrip(ctx context.Context, trip tripsdomain.Trip, current *tripsdomain.LocationPoint) error {
	th := e.settings.Load(ctx)
	return e.evaluate(ctx, trip, current, th)
}

// Sweep re-evaluates every ongoing trip. One trip's failure is logged and
// skipped; the sweep continues. Returns the number of trips evaluated.
func (e *Evaluator) Sweep(ctx context.Context) (int, error) {
	trips, err := e.trips.ListOngoing(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list ongoing trips: %w", err)
	}

	th := e.settings.Load(ctx)

	evaluated := 0
	for _, trip := range trips {
		if err := e.evaluate(ctx, trip, nil, th); err != nil {
			e.logger.Error("Alert evaluation failed for trip",
				zap.String("trip_id", trip.ID),
				zap.Error(err),
			)
			continue
		}
		evaluated++
	}
	return evaluated, nil
}

func (e *Evaluator) evaluate(ctx context.Context, trip tripsdomain.Trip, current *tripsdomain.LocationPoint, th domain.Thresholds) error {
	if !trip.Status.IsOngoing() {
		return nil
	}

	// latest is the newest known position: the just-ingested point, or the
	// stored head of the time series during sweeps.
	latest := current
	if latest == nil {
		stored, err := e.trips.LatestLocation(ctx, trip.ID)
		if err != nil {
			return fmt.Errorf("failed to load latest location: %w", err)
		}
		latest = stored
	}

	if err := e.checkRouteDeviation(ctx, trip, latest, th); err != nil {
		return err
	}
	if err := e.checkStoppage(ctx, trip, latest, th); err != nil {
		return err
	}
	if err := e.checkTrackingLost(ctx, trip, current, latest, th); err != nil {
		return err
	}
	if err := e.checkDelay(ctx, trip, th); err != nil {
		return err
	}
	if err := e.checkIdle(ctx, trip, latest, th); err != nil {
		return err
	}

	// Recompute the denormalized counter by aggregation; never adjust it
	// piecemeal, concurrent writers would drift it.
	count, err := e.alerts.CountOpen(ctx, trip.ID)
	if err != nil {
		return fmt.Errorf("failed to count open alerts: %w", err)
	}
	if err := e.trips.UpdateActiveAlertCount(ctx, trip.ID, count); err != nil {
		return fmt.Errorf("failed to update alert count: %w", err)
	}
	return nil
}

// checkRouteDeviation compares the current position against the lane's
// cached polyline. Trips without a lane or route geometry are skipped.
func (e *Evaluator) checkRouteDeviation(ctx context.Context, trip tripsdomain.Trip, latest *tripsdomain.LocationPoint, th domain.Thresholds) error {
	if latest == nil || trip.LaneID == nil {
		return nil
	}

	lane, err := e.trips.GetLane(ctx, *trip.LaneID)
	if err != nil {
		return fmt.Errorf("failed to load lane: %w", err)
	}
	if lane == nil || lane.EncodedPolyline == "" {
		return nil
	}

	route := geo.DecodePolyline(lane.EncodedPolyline)
	if len(route) < 2 {
		return nil
	}

	dist := geo.DistanceToPolyline(geo.Point{Lat: latest.Latitude, Lng: latest.Longitude}, route)
	if dist <= th.RouteDeviationMeters {
		return e.resolve(ctx, trip.ID, domain.AlertRouteDeviation)
	}

	severity := domain.SeverityMedium
	if dist > highDeviationMeters {
		severity = domain.SeverityHigh
	}
	return e.ensure(ctx, &domain.TripAlert{
		TripID:         trip.ID,
		Type:           domain.AlertRouteDeviation,
		Title:          "Route deviation detected",
		Description:    fmt.Sprintf("Vehicle is %.0f m off the planned route (threshold %.0f m)", dist, th.RouteDeviationMeters),
		Severity:       severity,
		ThresholdValue: th.RouteDeviationMeters,
		ActualValue:    dist,
	})
}

// checkStoppage walks the recent history backward to find how long the
// vehicle has been within stoppageRadiusMeters of the current point at
// stoppage speed.
func (e *Evaluator) checkStoppage(ctx context.Context, trip tripsdomain.Trip, latest *tripsdomain.LocationPoint, th domain.Thresholds) error {
	if latest == nil {
		return nil
	}

	if latest.SpeedKmh > stoppageSpeedKmh {
		return e.resolve(ctx, trip.ID, domain.AlertStoppage)
	}

	recent, err := e.trips.RecentLocations(ctx, trip.ID, stoppageHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load recent locations: %w", err)
	}

	stoppedSince := latest.EventTime
	for _, p := range recent {
		if p.EventTime.After(latest.EventTime) {
			continue
		}
		near := geo.Haversine(p.Latitude, p.Longitude, latest.Latitude, latest.Longitude) <= stoppageRadiusMeters
		if !near || p.SpeedKmh > stoppageSpeedKmh {
			break
		}
		stoppedSince = p.EventTime
	}

	minutes := e.now().Sub(stoppedSince).Minutes()
	if minutes < th.StoppageMinutes {
		return nil
	}

	severity := domain.SeverityMedium
	if minutes > highStoppageMinutes {
		severity = domain.SeverityHigh
	}
	return e.ensure(ctx, &domain.TripAlert{
		TripID:         trip.ID,
		Type:           domain.AlertStoppage,
		Title:          "Vehicle stoppage detected",
		Description:    fmt.Sprintf("Vehicle has been stopped for %.0f minutes", minutes),
		Severity:       severity,
		ThresholdValue: th.StoppageMinutes,
		ActualValue:    minutes,
	})
}

// checkTrackingLost raises when no telemetry has arrived within the
// threshold. A freshly ingested point always resolves the alert, which is
// why this rule re-runs on every ingest.
func (e *Evaluator) checkTrackingLost(ctx context.Context, trip tripsdomain.Trip, current, latest *tripsdomain.LocationPoint, th domain.Thresholds) error {
	if current != nil {
		return e.resolve(ctx, trip.ID, domain.AlertTrackingLost)
	}

	var ref time.Time
	switch {
	case latest != nil:
		ref = latest.EventTime
	case trip.LastPingAt != nil:
		ref = *trip.LastPingAt
	case trip.ActualStart != nil:
		ref = *trip.ActualStart
	case trip.PlannedStart != nil:
		ref = *trip.PlannedStart
	default:
		return nil
	}

	minutes := e.now().Sub(ref).Minutes()
	if minutes <= th.TrackingLostMinutes {
		return e.resolve(ctx, trip.ID, domain.AlertTrackingLost)
	}

	severity := domain.SeverityHigh
	if minutes > criticalTrackingLostMinutes {
		severity = domain.SeverityCritical
	}
	return e.ensure(ctx, &domain.TripAlert{
		TripID:         trip.ID,
		Type:           domain.AlertTrackingLost,
		Title:          "Tracking lost",
		Description:    fmt.Sprintf("No location received for %.0f minutes", minutes),
		Severity:       severity,
		ThresholdValue: th.TrackingLostMinutes,
		ActualValue:    minutes,
	})
}

// checkDelay compares now against the planned ETA and, for started trips,
// the planned end time, using whichever overrun is larger.
func (e *Evaluator) checkDelay(ctx context.Context, trip tripsdomain.Trip, th domain.Thresholds) error {
	now := e.now()

	overrun := 0.0
	applicable := false
	if trip.PlannedETA != nil {
		overrun = now.Sub(*trip.PlannedETA).Minutes()
		applicable = true
	}
	if trip.PlannedEnd != nil && trip.ActualStart != nil {
		if o := now.Sub(*trip.PlannedEnd).Minutes(); !applicable || o > overrun {
			overrun = o
		}
		applicable = true
	}
	if !applicable {
		return nil
	}

	if overrun <= th.DelayMinutes {
		return e.resolve(ctx, trip.ID, domain.AlertDelayWarning)
	}

	severity := domain.SeverityMedium
	switch {
	case overrun > criticalDelayMinutes:
		severity = domain.SeverityCritical
	case overrun > highDelayMinutes:
		severity = domain.SeverityHigh
	}
	return e.ensure(ctx, &domain.TripAlert{
		TripID:         trip.ID,
		Type:           domain.AlertDelayWarning,
		Title:          "Trip delayed",
		Description:    fmt.Sprintf("Trip is running %.0f minutes behind plan", overrun),
		Severity:       severity,
		ThresholdValue: th.DelayMinutes,
		ActualValue:    overrun,
	})
}

// checkIdle raises when a started trip has produced no telemetry at all.
// The first received point resolves it.
func (e *Evaluator) checkIdle(ctx context.Context, trip tripsdomain.Trip, latest *tripsdomain.LocationPoint, th domain.Thresholds) error {
	if trip.ActualStart == nil {
		return nil
	}
	if latest != nil {
		return e.resolve(ctx, trip.ID, domain.AlertIdleDetected)
	}

	minutes := e.now().Sub(*trip.ActualStart).Minutes()
	if minutes <= th.IdleMinutes {
		return nil
	}

	return e.ensure(ctx, &domain.TripAlert{
		TripID:         trip.ID,
		Type:           domain.AlertIdleDetected,
		Title:          "Trip idle",
		Description:    fmt.Sprintf("Trip started %.0f minutes ago with no telemetry", minutes),
		Severity:       domain.SeverityHigh,
		ThresholdValue: th.IdleMinutes,
		ActualValue:    minutes,
	})
}

// ensure inserts the alert unless an open alert of the same type already
// exists for the trip. The check-then-insert has a small race window under
// concurrent evaluation of the same trip; accepted as low impact.
func (e *Evaluator) ensure(ctx context.Context, alert *domain.TripAlert) error {
	existing, err := e.alerts.FindOpenByType(ctx, alert.TripID, alert.Type)
	if err != nil {
		return fmt.Errorf("failed to look up open %s alert: %w", alert.Type, err)
	}
	if existing != nil {
		return nil
	}

	alert.ID = uuid.NewString()
	alert.Status = domain.AlertStatusActive
	alert.TriggeredAt = e.now()
	if err := e.alerts.Insert(ctx, alert); err != nil {
		return fmt.Errorf("failed to insert %s alert: %w", alert.Type, err)
	}

	e.logger.Info("Trip alert raised",
		zap.String("trip_id", alert.TripID),
		zap.String("alert_type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
		zap.Float64("actual_value", alert.ActualValue),
	)
	return nil
}

func (e *Evaluator) resolve(ctx context.Context, tripID string, alertType domain.AlertType) error {
	if err := e.alerts.ResolveByType(ctx, tripID, alertType, e.now()); err != nil {
		return fmt.Errorf("failed to resolve %s alerts: %w", alertType, err)
	}
	return nil
}
