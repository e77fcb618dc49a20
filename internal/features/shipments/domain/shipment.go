package domain

import "time"

// Status represents the main lifecycle state of a shipment.
type Status string

const (
	StatusCreated        Status = "created"
	StatusConfirmed      Status = "confirmed"
	StatusMapped         Status = "mapped"
	StatusInPickup       Status = "in_pickup"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusNDR            Status = "ndr"
	StatusReturned       Status = "returned"
	StatusSuccess        Status = "success"
)

// ChangeSource identifies who or what requested a status change.
type ChangeSource string

const (
	SourceManual   ChangeSource = "manual"
	SourceGeofence ChangeSource = "geofence"
	SourceAPI      ChangeSource = "api"
	SourceSystem   ChangeSource = "system"
)

// Shipment represents a shipment managed by the dashboard.
type Shipment struct {
	ID        string  `json:"id"`
	Status    Status  `json:"status"`
	SubStatus *string `json:"sub_status,omitempty"`

	// TripID links the shipment to a trip once mapping is done.
	TripID *string `json:"trip_id,omitempty"`

	// Mandatory intake fields, validated on created -> confirmed.
	ConsigneeCode  string `json:"consignee_code"`
	MaterialID     string `json:"material_id"`
	PickupLocation string `json:"pickup_location"`
	DropLocation   string `json:"drop_location"`

	Delayed      bool    `json:"delayed"`
	DelayPercent float64 `json:"delay_percent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripLink carries the trip fields the transition guards need.
type TripLink struct {
	ID        string
	VehicleID string
}

// StatusHistoryEntry is an immutable audit record of one status change.
// Entries are append-only and ordered by ChangedAt ascending.
type StatusHistoryEntry struct {
	ID                string            `json:"id"`
	ShipmentID        string            `json:"shipment_id"`
	PreviousStatus    Status            `json:"previous_status"`
	NewStatus         Status            `json:"new_status"`
	PreviousSubStatus *string           `json:"previous_sub_status,omitempty"`
	NewSubStatus      *string           `json:"new_sub_status,omitempty"`
	ChangedAt         time.Time         `json:"changed_at"`
	ChangeSource      ChangeSource      `json:"change_source"`
	Notes             string            `json:"notes,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}
