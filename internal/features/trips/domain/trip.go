package domain

import "time"

// TripStatus represents the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusPlanned   TripStatus = "planned"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusInTransit TripStatus = "in_transit"
	TripStatusStarted   TripStatus = "started"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// IsOngoing reports whether the trip is in a state monitored by the alert
// evaluator.
func (s TripStatus) IsOngoing() bool {
	return s == TripStatusOngoing || s == TripStatusInTransit || s == TripStatusStarted
}

// Trip represents a vehicle journey executing one shipment over a lane.
type Trip struct {
	ID     string     `json:"id"`
	Status TripStatus `json:"status"`

	ShipmentID *string `json:"shipment_id,omitempty"`
	VehicleID  string  `json:"vehicle_id,omitempty"`
	DriverID   string  `json:"driver_id,omitempty"`
	// TrackingAssetID identifies the GPS device or SIM used for telemetry.
	TrackingAssetID string  `json:"tracking_asset_id,omitempty"`
	LaneID          *string `json:"lane_id,omitempty"`

	// Pickup and drop coordinates used for geofence checks.
	PickupLat float64 `json:"pickup_lat"`
	PickupLng float64 `json:"pickup_lng"`
	DropLat   float64 `json:"drop_lat"`
	DropLng   float64 `json:"drop_lng"`

	PlannedStart *time.Time `json:"planned_start,omitempty"`
	PlannedEnd   *time.Time `json:"planned_end,omitempty"`
	PlannedETA   *time.Time `json:"planned_eta,omitempty"`
	ActualStart  *time.Time `json:"actual_start,omitempty"`
	ActualEnd    *time.Time `json:"actual_end,omitempty"`

	LastPingAt *time.Time `json:"last_ping_at,omitempty"`

	// ActiveAlertCount is a denormalized cache of the trip's open alerts.
	// It is recomputed by aggregation after every evaluation batch, never
	// incremented piecemeal.
	ActiveAlertCount int `json:"active_alert_count"`
}

// LocationSource identifies the telemetry origin.
type LocationSource string

const (
	SourceGPS LocationSource = "gps"
	SourceSIM LocationSource = "sim"
)

// LocationPoint is one telemetry sample for a trip. Points form an
// append-only time series ordered by EventTime.
type LocationPoint struct {
	TripID    string         `json:"trip_id"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	SpeedKmh  float64        `json:"speed_kmh"`
	Heading   float64        `json:"heading"`
	Source    LocationSource `json:"source"`
	EventTime time.Time      `json:"event_time"`
}

// Lane is a predefined origin-destination route with a cached
// routing-provider polyline. It is computed externally and consumed
// read-only by deviation checks.
type Lane struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	EncodedPolyline      string `json:"encoded_polyline"`
	TotalDistanceMeters  int    `json:"total_distance_meters"`
	TotalDurationSeconds int    `json:"total_duration_seconds"`

	Waypoints []string `json:"waypoints,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// RouteData is the payload returned by a routing provider for a lane.
type RouteData struct {
	EncodedPolyline      string `json:"encoded_polyline"`
	TotalDistanceMeters  int    `json:"total_distance_meters"`
	TotalDurationSeconds int    `json:"total_duration_seconds"`
}
