package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func completeShipment(status Status) *Shipment {
	tripID := "trip-1"
	return &Shipment{
		ID:             "shp-1",
		Status:         status,
		TripID:         &tripID,
		ConsigneeCode:  "CNS-001",
		MaterialID:     "MAT-042",
		PickupLocation: "Bhiwandi Hub",
		DropLocation:   "Nagpur Depot",
	}
}

// TestValidateStatusTransition_Table verifies every entry of the allowed
// transitions table is accepted and everything else is rejected.
func TestValidateStatusTransition_Table(t *testing.T) {
	all := []Status{
		StatusCreated, StatusConfirmed, StatusMapped, StatusInPickup,
		StatusInTransit, StatusOutForDelivery, StatusDelivered,
		StatusNDR, StatusReturned, StatusSuccess,
	}

	trip := &TripLink{ID: "trip-1", VehicleID: "veh-1"}

	for from, allowed := range AllowedTransitions {
		allowedSet := map[Status]bool{}
		for _, s := range allowed {
			allowedSet[s] = true
		}

		for _, to := range all {
			s := completeShipment(from)
			if from == StatusDelivered && to == StatusSuccess {
				s.SubStatus = strPtr("paid")
			}

			result := ValidateStatusTransition(s, to, trip)
			if allowedSet[to] {
				assert.True(t, result.Valid, "%s -> %s should be allowed", from, to)
			} else {
				assert.False(t, result.Valid, "%s -> %s should be rejected", from, to)
				assert.NotEmpty(t, result.Message)
			}
		}
	}
}

// TestValidateStatusTransition_MandatoryFields verifies the created -> confirmed guard.
func TestValidateStatusTransition_MandatoryFields(t *testing.T) {
	s := completeShipment(StatusCreated)
	s.ConsigneeCode = ""
	s.MaterialID = " "

	result := ValidateStatusTransition(s, StatusConfirmed, nil)
	require.False(t, result.Valid)
	assert.Equal(t, "Missing required fields: consignee_code, material_id", result.Message)

	s = completeShipment(StatusCreated)
	result = ValidateStatusTransition(s, StatusConfirmed, nil)
	assert.True(t, result.Valid)
}

// TestValidateStatusTransition_TripLinkage verifies that mapping requires a linked trip.
func TestValidateStatusTransition_TripLinkage(t *testing.T) {
	s := completeShipment(StatusConfirmed)
	s.TripID = nil

	result := ValidateStatusTransition(s, StatusMapped, nil)
	require.False(t, result.Valid)
	assert.Equal(t, "Shipment must be linked to a trip before mapping", result.Message)

	s.TripID = strPtr("")
	result = ValidateStatusTransition(s, StatusMapped, nil)
	assert.False(t, result.Valid)
}

// TestValidateStatusTransition_VehicleLinkage verifies mapped -> in_pickup
// requires a vehicle on the linked trip.
func TestValidateStatusTransition_VehicleLinkage(t *testing.T) {
	s := completeShipment(StatusMapped)

	result := ValidateStatusTransition(s, StatusInPickup, nil)
	assert.False(t, result.Valid)

	result = ValidateStatusTransition(s, StatusInPickup, &TripLink{ID: "trip-1"})
	require.False(t, result.Valid)
	assert.Equal(t, "Linked trip has no vehicle assigned", result.Message)

	result = ValidateStatusTransition(s, StatusInPickup, &TripLink{ID: "trip-1", VehicleID: "veh-1"})
	assert.True(t, result.Valid)
}

// TestValidateStatusTransition_DeliveredToSuccess verifies the paid sub-status guard.
func TestValidateStatusTransition_DeliveredToSuccess(t *testing.T) {
	tests := []struct {
		name      string
		subStatus *string
		valid     bool
	}{
		{name: "NoSubStatus", subStatus: nil, valid: false},
		{name: "PodPending", subStatus: strPtr("pod_pending"), valid: false},
		{name: "Billed", subStatus: strPtr("billed"), valid: false},
		{name: "Paid", subStatus: strPtr("paid"), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completeShipment(StatusDelivered)
			s.SubStatus = tt.subStatus

			result := ValidateStatusTransition(s, StatusSuccess, nil)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.Contains(t, result.Message, "POD Cleaned -> Billed -> Paid")
			}
		})
	}
}

// TestValidateSubStatusProgression verifies step-by-step advancement.
func TestValidateSubStatusProgression(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		current *string
		next    string
		valid   bool
	}{
		{name: "FirstStep", status: StatusInPickup, current: nil, next: "vehicle_placed", valid: true},
		{name: "NextStep", status: StatusInPickup, current: strPtr("loading_started"), next: "loading_completed", valid: true},
		{name: "SkipStep", status: StatusInPickup, current: strPtr("loading_started"), next: "ready_for_dispatch", valid: false},
		{name: "Regression", status: StatusInPickup, current: strPtr("loading_completed"), next: "loading_started", valid: false},
		{name: "SameStep", status: StatusInPickup, current: strPtr("loading_started"), next: "loading_started", valid: false},
		{name: "DeliveredFlow", status: StatusDelivered, current: strPtr("billed"), next: "paid", valid: true},
		{name: "SkipFromStart", status: StatusDelivered, current: nil, next: "billed", valid: false},
		{name: "UnknownSubStatus", status: StatusInPickup, current: nil, next: "warehouse_left", valid: false},
		{name: "NoFlowForStatus", status: StatusCreated, current: nil, next: "vehicle_placed", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSubStatusProgression(tt.status, tt.current, tt.next)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}
