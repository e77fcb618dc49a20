package service

import (
	"context"
	"fmt"
	"time"

	"fleetops/internal/core/cache"
	"fleetops/internal/core/geo"
	"fleetops/internal/core/logger"
	"fleetops/internal/features/geofence/domain"
	shipdomain "fleetops/internal/features/shipments/domain"
	tripsdomain "fleetops/internal/features/trips/domain"

	"go.uber.org/zap"
)

// lastEventTTL caps how long a trip's geofence state survives without
// telemetry. Longer than any realistic trip.
const lastEventTTL = 7 * 24 * time.Hour

// StatusChanger applies a shipment status change on behalf of the monitor.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, id string, next shipdomain.Status, source shipdomain.ChangeSource, notes string) (shipdomain.TransitionResult, error)
}

// Monitor derives zone crossing events from trip positions and advances the
// linked shipment's status automatically. It keeps no state beyond the last
// event per trip, held in the cache to avoid re-firing on every ping inside
// a zone.
type Monitor struct {
	statuses     StatusChanger
	cache        cache.Cache
	radiusMeters float64
	logger       *zap.Logger
}

// NewMonitor creates a new Monitor. radiusMeters is the geofence radius
// around the pickup and drop coordinates.
func NewMonitor(statuses StatusChanger, c cache.Cache, radiusMeters float64) *Monitor {
	return &Monitor{
		statuses:     statuses,
		cache:        c,
		radiusMeters: radiusMeters,
		logger:       logger.Get(),
	}
}

func lastEventKey(tripID string) string {
	return fmt.Sprintf("geofence:last_event:%s", tripID)
}

// Check evaluates the position against the trip's pickup and drop zones and
// applies at most one derived event. Transitions the state machine rejects
// are logged and swallowed; the event state still advances so the same
// crossing is not retried on every ping.
func (m *Monitor) Check(ctx context.Context, trip tripsdomain.Trip, current tripsdomain.LocationPoint) error {
	if trip.ShipmentID == nil {
		return nil
	}

	inPickup, _ := geo.WithinRadius(current.Latitude, current.Longitude, trip.PickupLat, trip.PickupLng, m.radiusMeters)
	inDrop, _ := geo.WithinRadius(current.Latitude, current.Longitude, trip.DropLat, trip.DropLng, m.radiusMeters)

	last := m.lastEvent(ctx, trip.ID)
	event := deriveEvent(last, inPickup, inDrop)
	if event == domain.EventNone {
		return nil
	}

	if err := m.applyEvent(ctx, *trip.ShipmentID, trip.ID, event); err != nil {
		return err
	}

	if err := m.cache.Set(ctx, lastEventKey(trip.ID), []byte(event), lastEventTTL); err != nil {
		return fmt.Errorf("failed to store geofence state for trip %s: %w", trip.ID, err)
	}
	return nil
}

func (m *Monitor) lastEvent(ctx context.Context, tripID string) domain.Event {
	raw, err := m.cache.Get(ctx, lastEventKey(tripID))
	if err != nil {
		return domain.EventNone
	}
	return domain.Event(raw)
}

// deriveEvent advances the crossing sequence by one step at most:
// pickup_entry -> pickup_exit -> delivery_entry -> delivery_exit.
func deriveEvent(last domain.Event, inPickup, inDrop bool) domain.Event {
	switch {
	case inPickup && last == domain.EventNone:
		return domain.EventPickupEntry
	case !inPickup && last == domain.EventPickupEntry:
		return domain.EventPickupExit
	case inDrop && !inPickup && (last == domain.EventNone || last == domain.EventPickupExit):
		return domain.EventDeliveryEntry
	case !inDrop && last == domain.EventDeliveryEntry:
		return domain.EventDeliveryExit
	default:
		return domain.EventNone
	}
}

func (m *Monitor) applyEvent(ctx context.Context, shipmentID, tripID string, event domain.Event) error {
	var next shipdomain.Status
	switch event {
	case domain.EventPickupEntry:
		next = shipdomain.StatusInPickup
	case domain.EventPickupExit:
		next = shipdomain.StatusInTransit
	case domain.EventDeliveryEntry:
		next = shipdomain.StatusOutForDelivery
	default:
		// delivery_exit only advances the event state.
		return nil
	}

	notes := fmt.Sprintf("auto-advanced on %s", event)
	result, err := m.statuses.ChangeStatus(ctx, shipmentID, next, shipdomain.SourceGeofence, notes)
	if err != nil {
		return fmt.Errorf("failed to apply %s for trip %s: %w", event, tripID, err)
	}
	if !result.Valid {
		m.logger.Debug("Geofence status change rejected",
			zap.String("trip_id", tripID),
			zap.String("shipment_id", shipmentID),
			zap.String("event", string(event)),
			zap.String("reason", result.Message),
		)
		return nil
	}

	m.logger.Info("Shipment status advanced by geofence",
		zap.String("trip_id", tripID),
		zap.String("shipment_id", shipmentID),
		zap.String("event", string(event)),
		zap.String("new_status", string(next)),
	)
	return nil
}
