package ports

import (
	"context"
	"time"

	alertsdomain "fleetops/internal/features/alerts/domain"
	"fleetops/internal/features/compliance/domain"
)

// ComplianceRepository defines persistence for documents and their alerts.
type ComplianceRepository interface {
	// ListDocuments returns every tracked document for active vehicles and
	// drivers.
	ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error)

	// GetDocument returns the live document record, or nil when the entity
	// or document no longer exists.
	GetDocument(ctx context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.DocumentRecord, error)

	// FindOpenAlert returns the non-resolved alert for the document, or nil.
	FindOpenAlert(ctx context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.ComplianceAlert, error)

	// Insert stores a new alert.
	Insert(ctx context.Context, alert *domain.ComplianceAlert) error

	// UpdateLevel changes an open alert's level and tracked expiry date.
	UpdateLevel(ctx context.Context, id string, level domain.AlertLevel, expiry time.Time) error

	// Resolve closes the alert at the given time.
	Resolve(ctx context.Context, id string, at time.Time) error

	// ListOpenAlerts returns all non-resolved alerts.
	ListOpenAlerts(ctx context.Context) ([]domain.ComplianceAlert, error)
}

// SettingsProvider loads the scan thresholds. Load never errors;
// implementations fall back to defaults.
type SettingsProvider interface {
	Load(ctx context.Context) alertsdomain.Thresholds
}
