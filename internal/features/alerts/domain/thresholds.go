package domain

import "strconv"

// Settings keys for externally configurable thresholds.
const (
	KeyRouteDeviationMeters = "route_deviation_threshold_meters"
	KeyStoppageMinutes      = "stoppage_threshold_minutes"
	KeyTrackingLostMinutes  = "tracking_lost_threshold_minutes"
	KeyDelayMinutes         = "delay_threshold_minutes"
	KeyIdleMinutes          = "idle_threshold_minutes"
	KeyComplianceWarnDays   = "compliance_warning_days"
	KeyComplianceCritDays   = "compliance_critical_days"
)

// Thresholds is the configuration object passed into each evaluator run.
// It is loaded once per invocation by the caller so rule evaluation itself
// never touches the settings store.
type Thresholds struct {
	RouteDeviationMeters float64 `json:"route_deviation_threshold_meters"`
	StoppageMinutes      float64 `json:"stoppage_threshold_minutes"`
	TrackingLostMinutes  float64 `json:"tracking_lost_threshold_minutes"`
	DelayMinutes         float64 `json:"delay_threshold_minutes"`
	IdleMinutes          float64 `json:"idle_threshold_minutes"`

	ComplianceWarningDays  int `json:"compliance_warning_days"`
	ComplianceCriticalDays int `json:"compliance_critical_days"`
}

// DefaultThresholds returns the hardcoded fallback thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RouteDeviationMeters:   500,
		StoppageMinutes:        30,
		TrackingLostMinutes:    30,
		DelayMinutes:           60,
		IdleMinutes:            120,
		ComplianceWarningDays:  30,
		ComplianceCriticalDays: 7,
	}
}

// ParseThresholds builds Thresholds from raw settings values. Missing or
// unparseable values fall back to the defaults; parsing never fails.
func ParseThresholds(values map[string]string) Thresholds {
	th := DefaultThresholds()

	parseFloat(values, KeyRouteDeviationMeters, &th.RouteDeviationMeters)
	parseFloat(values, KeyStoppageMinutes, &th.StoppageMinutes)
	parseFloat(values, KeyTrackingLostMinutes, &th.TrackingLostMinutes)
	parseFloat(values, KeyDelayMinutes, &th.DelayMinutes)
	parseFloat(values, KeyIdleMinutes, &th.IdleMinutes)
	parseInt(values, KeyComplianceWarnDays, &th.ComplianceWarningDays)
	parseInt(values, KeyComplianceCritDays, &th.ComplianceCriticalDays)

	return th
}

func parseFloat(values map[string]string, key string, out *float64) {
	raw, found := values[key]
	if !found {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return
	}
	*out = v
}

func parseInt(values map[string]string, key string, out *int) {
	raw, found := values[key]
	if !found {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return
	}
	*out = v
}
