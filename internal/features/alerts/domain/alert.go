package domain

import "time"

// AlertType identifies the monitored condition behind a trip alert.
type AlertType string

const (
	AlertRouteDeviation AlertType = "route_deviation"
	AlertStoppage       AlertType = "stoppage"
	AlertTrackingLost   AlertType = "tracking_lost"
	AlertIdleDetected   AlertType = "idle_detected"
	AlertDelayWarning   AlertType = "delay_warning"
)

// Severity ranks the operational urgency of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertStatus is the lifecycle state of a trip alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusDismissed    AlertStatus = "dismissed"
)

// IsOpen reports whether the alert still counts against the trip's
// active_alert_count and blocks duplicate creation.
func (s AlertStatus) IsOpen() bool {
	return s == AlertStatusActive || s == AlertStatusAcknowledged
}

// TripAlert is one operational alert raised against a trip. At most one
// open alert exists per (trip, alert type); the evaluator checks before
// inserting rather than relying on a uniqueness constraint.
type TripAlert struct {
	ID          string      `json:"id"`
	TripID      string      `json:"trip_id"`
	Type        AlertType   `json:"alert_type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Status      AlertStatus `json:"status"`

	TriggeredAt time.Time  `json:"triggered_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`

	ThresholdValue float64           `json:"threshold_value"`
	ActualValue    float64           `json:"actual_value"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
