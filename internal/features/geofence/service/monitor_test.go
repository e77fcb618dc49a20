package service

import (
	"context"
	"testing"

	"fleetops/internal/core/cache"
	"fleetops/internal/features/geofence/domain"
	shipdomain "fleetops/internal/features/shipments/domain"
	tripsdomain "fleetops/internal/features/trips/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStatusChanger records status change requests and returns a fixed
// result.
type recordingStatusChanger struct {
	t      *testing.T
	calls  []shipdomain.Status
	result shipdomain.TransitionResult
}

func (r *recordingStatusChanger) ChangeStatus(_ context.Context, _ string, next shipdomain.Status, source shipdomain.ChangeSource, _ string) (shipdomain.TransitionResult, error) {
	assert.Equal(r.t, shipdomain.SourceGeofence, source)
	r.calls = append(r.calls, next)
	return r.result, nil
}

func newTestMonitor(t *testing.T, statuses *recordingStatusChanger) *Monitor {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewMonitor(statuses, adapter, 200)
}

// geofenceTrip has its pickup at the equator origin and drop one degree of
// longitude east, far outside each other's radius.
func geofenceTrip() tripsdomain.Trip {
	shipmentID := "shipment-1"
	return tripsdomain.Trip{
		ID:         "trip-1",
		Status:     tripsdomain.TripStatusOngoing,
		ShipmentID: &shipmentID,
		PickupLat:  0, PickupLng: 0,
		DropLat: 0, DropLng: 1,
	}
}

func at(lat, lng float64) tripsdomain.LocationPoint {
	return tripsdomain.LocationPoint{TripID: "trip-1", Latitude: lat, Longitude: lng}
}

func TestCheck_PickupEntryAdvancesShipment(t *testing.T) {
	statuses := &recordingStatusChanger{t: t, result: shipdomain.TransitionResult{Valid: true}}
	monitor := newTestMonitor(t, statuses)

	require.NoError(t, monitor.Check(context.Background(), geofenceTrip(), at(0.0001, 0)))

	require.Len(t, statuses.calls, 1)
	assert.Equal(t, shipdomain.StatusInPickup, statuses.calls[0])
}

func TestCheck_DoesNotRefireInsideZone(t *testing.T) {
	statuses := &recordingStatusChanger{t: t, result: shipdomain.TransitionResult{Valid: true}}
	monitor := newTestMonitor(t, statuses)
	trip := geofenceTrip()

	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0001, 0)))
	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0002, 0)))
	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0001, 0)))

	assert.Len(t, statuses.calls, 1)
}

func TestCheck_FullCrossingSequence(t *testing.T) {
	statuses := &recordingStatusChanger{t: t, result: shipdomain.TransitionResult{Valid: true}}
	monitor := newTestMonitor(t, statuses)
	trip := geofenceTrip()
	ctx := context.Background()

	require.NoError(t, monitor.Check(ctx, trip, at(0.0001, 0)))   // pickup entry
	require.NoError(t, monitor.Check(ctx, trip, at(0.01, 0.5)))   // pickup exit
	require.NoError(t, monitor.Check(ctx, trip, at(0.0001, 1)))   // delivery entry
	require.NoError(t, monitor.Check(ctx, trip, at(0.05, 1.2)))   // delivery exit
	require.NoError(t, monitor.Check(ctx, trip, at(0.06, 1.3)))   // no further events

	assert.Equal(t, []shipdomain.Status{
		shipdomain.StatusInPickup,
		shipdomain.StatusInTransit,
		shipdomain.StatusOutForDelivery,
	}, statuses.calls)
}

func TestCheck_RejectedTransitionStillAdvancesState(t *testing.T) {
	statuses := &recordingStatusChanger{t: t, result: shipdomain.TransitionResult{
		Valid:   false,
		Message: "Shipment must be linked to a trip before mapping",
	}}
	monitor := newTestMonitor(t, statuses)
	trip := geofenceTrip()

	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0001, 0)))
	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0001, 0)))

	// The rejected change is not retried on the next ping in the same zone.
	assert.Len(t, statuses.calls, 1)
}

func TestCheck_SkipsTripWithoutShipment(t *testing.T) {
	statuses := &recordingStatusChanger{t: t, result: shipdomain.TransitionResult{Valid: true}}
	monitor := newTestMonitor(t, statuses)
	trip := geofenceTrip()
	trip.ShipmentID = nil

	require.NoError(t, monitor.Check(context.Background(), trip, at(0.0001, 0)))
	assert.Empty(t, statuses.calls)
}

func TestDeriveEvent_MidRoutePositionIsQuiet(t *testing.T) {
	assert.Equal(t, domain.EventNone, deriveEvent(domain.EventPickupExit, false, false))
	assert.Equal(t, domain.EventNone, deriveEvent(domain.EventDeliveryExit, false, true))
}
