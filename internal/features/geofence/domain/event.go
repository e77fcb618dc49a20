package domain

// Event is a zone boundary crossing derived from a trip's position relative
// to its pickup and drop coordinates.
type Event string

const (
	// EventNone means no boundary crossing has been observed yet.
	EventNone          Event = ""
	EventPickupEntry   Event = "pickup_entry"
	EventPickupExit    Event = "pickup_exit"
	EventDeliveryEntry Event = "delivery_entry"
	EventDeliveryExit  Event = "delivery_exit"
)
