package domain

import (
	"fmt"
	"strings"
)

// TransitionResult is the outcome of a transition validation. It is a value,
// not an error: callers surface Message to the user and apply no mutation
// when Valid is false.
type TransitionResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func ok() TransitionResult {
	return TransitionResult{Valid: true}
}

func rejected(format string, args ...interface{}) TransitionResult {
	return TransitionResult{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// AllowedTransitions is the static forward-flow table for main statuses.
// ndr and returned are lateral exception states reachable from in-transit-like
// statuses.
var AllowedTransitions = map[Status][]Status{
	StatusCreated:        {StatusConfirmed},
	StatusConfirmed:      {StatusMapped},
	StatusMapped:         {StatusInPickup},
	StatusInPickup:       {StatusInTransit},
	StatusInTransit:      {StatusOutForDelivery, StatusNDR, StatusReturned},
	StatusOutForDelivery: {StatusDelivered, StatusNDR, StatusReturned},
	StatusNDR:            {StatusOutForDelivery, StatusReturned},
	StatusDelivered:      {StatusSuccess},
	StatusReturned:       {},
	StatusSuccess:        {},
}

// SubStatusFlows defines the linear sub-status progression scoped per main
// status. A sub-status may only advance to the immediate next entry.
var SubStatusFlows = map[Status][]string{
	StatusInPickup: {
		"vehicle_placed",
		"loading_started",
		"loading_completed",
		"ready_for_dispatch",
	},
	StatusDelivered: {
		"pod_pending",
		"pod_cleaned",
		"billed",
		"paid",
	},
}

// terminalDeliveredSubStatus is the sub-status required before a delivered
// shipment may close as success.
const terminalDeliveredSubStatus = "paid"

// mandatoryFields returns the names of intake fields that are still empty.
func (s *Shipment) mandatoryFields() []string {
	var missing []string
	if strings.TrimSpace(s.ConsigneeCode) == "" {
		missing = append(missing, "consignee_code")
	}
	if strings.TrimSpace(s.MaterialID) == "" {
		missing = append(missing, "material_id")
	}
	if strings.TrimSpace(s.PickupLocation) == "" {
		missing = append(missing, "pickup_location")
	}
	if strings.TrimSpace(s.DropLocation) == "" {
		missing = append(missing, "drop_location")
	}
	return missing
}

// ValidateStatusTransition checks whether the shipment may move to next.
// trip is the linked trip, nil when the shipment is not mapped yet. All
// guards must pass; the first failure is returned and nothing is mutated.
func ValidateStatusTransition(s *Shipment, next Status, trip *TripLink) TransitionResult {
	allowed, known := AllowedTransitions[s.Status]
	if !known {
		return rejected("Unknown shipment status: %s", s.Status)
	}

	found := false
	for _, a := range allowed {
		if a == next {
			found = true
			break
		}
	}
	if !found {
		return rejected("Cannot change status from %s to %s", s.Status, next)
	}

	if s.Status == StatusCreated && next == StatusConfirmed {
		if missing := s.mandatoryFields(); len(missing) > 0 {
			return rejected("Missing required fields: %s", strings.Join(missing, ", "))
		}
	}

	if next == StatusMapped && (s.TripID == nil || *s.TripID == "") {
		return rejected("Shipment must be linked to a trip before mapping")
	}

	if s.Status == StatusMapped && next == StatusInPickup {
		if trip == nil || trip.VehicleID == "" {
			return rejected("Linked trip has no vehicle assigned")
		}
	}

	if s.Status == StatusDelivered && next == StatusSuccess {
		if s.SubStatus == nil || *s.SubStatus != terminalDeliveredSubStatus {
			return rejected("Delivery must complete POD Cleaned -> Billed -> Paid before closing as success")
		}
	}

	return ok()
}

// ValidateSubStatusProgression checks whether a sub-status may advance within
// the given main status. The current index is derived by locating current in
// the ordered flow (absent means before the first step); only the immediate
// next index is accepted.
func ValidateSubStatusProgression(status Status, current *string, next string) TransitionResult {
	flow, defined := SubStatusFlows[status]
	if !defined {
		return rejected("Status %s has no sub-status flow", status)
	}

	nextIdx := -1
	for i, step := range flow {
		if step == next {
			nextIdx = i
			break
		}
	}
	if nextIdx == -1 {
		return rejected("Unknown sub-status %q for status %s", next, status)
	}

	curIdx := -1
	if current != nil {
		for i, step := range flow {
			if step == *current {
				curIdx = i
				break
			}
		}
	}

	if nextIdx != curIdx+1 {
		if nextIdx <= curIdx {
			return rejected("Sub-status cannot move back from %s to %s", flow[curIdx], next)
		}
		return rejected("Sub-status must advance one step at a time; next allowed is %s", flow[curIdx+1])
	}

	return ok()
}
