package domain

import "time"

// EntityType identifies what kind of entity a document belongs to.
type EntityType string

const (
	EntityVehicle EntityType = "vehicle"
	EntityDriver  EntityType = "driver"
)

// DocumentType is a tracked compliance document.
type DocumentType string

const (
	DocRC        DocumentType = "rc"
	DocInsurance DocumentType = "insurance"
	DocPermit    DocumentType = "permit"
	DocFitness   DocumentType = "fitness"
	DocPUC       DocumentType = "puc"

	DocLicense            DocumentType = "license"
	DocPoliceVerification DocumentType = "police_verification"
)

// VehicleDocumentTypes lists the documents tracked per vehicle.
var VehicleDocumentTypes = []DocumentType{DocRC, DocInsurance, DocPermit, DocFitness, DocPUC}

// DriverDocumentTypes lists the documents tracked per driver.
var DriverDocumentTypes = []DocumentType{DocLicense, DocPoliceVerification}

// AlertLevel classifies how close a document is to expiry.
type AlertLevel string

const (
	// LevelNone means the document does not breach any threshold.
	LevelNone     AlertLevel = ""
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
	LevelExpired  AlertLevel = "expired"
)

// ComplianceStatus is the lifecycle state of a compliance alert.
type ComplianceStatus string

const (
	ComplianceActive       ComplianceStatus = "active"
	ComplianceAcknowledged ComplianceStatus = "acknowledged"
	ComplianceResolved     ComplianceStatus = "resolved"
)

// DocumentRecord is one entity document with its expiry date. The time of
// day on ExpiryDate is ignored everywhere.
type DocumentRecord struct {
	EntityType   EntityType   `json:"entity_type"`
	EntityID     string       `json:"entity_id"`
	DocumentType DocumentType `json:"document_type"`
	ExpiryDate   time.Time    `json:"expiry_date"`
}

// ComplianceAlert tracks one expiring document. At most one non-resolved
// alert exists per (entity_type, entity_id, document_type); the level is
// updated in place as expiry approaches.
type ComplianceAlert struct {
	ID           string           `json:"id"`
	EntityType   EntityType       `json:"entity_type"`
	EntityID     string           `json:"entity_id"`
	DocumentType DocumentType     `json:"document_type"`
	ExpiryDate   time.Time        `json:"expiry_date"`
	Level        AlertLevel       `json:"alert_level"`
	Status       ComplianceStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ResolvedAt   *time.Time       `json:"resolved_at,omitempty"`
}

// DateOnly strips the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole-day distance from today to expiry, date-only.
func DaysUntil(expiry, today time.Time) int {
	return int(DateOnly(expiry).Sub(DateOnly(today)).Hours() / 24)
}

// Classify maps a document expiry date to an alert level. Expired when the
// date is in the past, critical within critDays, warning within warnDays,
// otherwise none.
func Classify(expiry, today time.Time, warnDays, critDays int) AlertLevel {
	days := DaysUntil(expiry, today)
	switch {
	case days < 0:
		return LevelExpired
	case days <= critDays:
		return LevelCritical
	case days <= warnDays:
		return LevelWarning
	default:
		return LevelNone
	}
}
