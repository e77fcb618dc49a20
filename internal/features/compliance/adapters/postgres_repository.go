package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/features/compliance/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresComplianceRepository implements ports.ComplianceRepository on pgx.
// Vehicle and driver documents live in separate tables; reads union them
// into DocumentRecord rows.
type PostgresComplianceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresComplianceRepository creates a new PostgresComplianceRepository.
func NewPostgresComplianceRepository(pool *pgxpool.Pool) *PostgresComplianceRepository {
	return &PostgresComplianceRepository{pool: pool}
}

const documentsQuery = `
	SELECT 'vehicle', vehicle_id, document_type, expiry_date
	FROM vehicle_documents
	WHERE active
	UNION ALL
	SELECT 'driver', driver_id, document_type, expiry_date
	FROM driver_documents
	WHERE active
`

// ListDocuments returns every tracked document for active vehicles and drivers.
func (r *PostgresComplianceRepository) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := r.pool.Query(ctx, documentsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord
	for rows.Next() {
		var d domain.DocumentRecord
		if err := rows.Scan(&d.EntityType, &d.EntityID, &d.DocumentType, &d.ExpiryDate); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument returns the live document record, or nil when missing.
func (r *PostgresComplianceRepository) GetDocument(ctx context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.DocumentRecord, error) {
	table, idColumn := "vehicle_documents", "vehicle_id"
	if entityType == domain.EntityDriver {
		table, idColumn = "driver_documents", "driver_id"
	}

	d := domain.DocumentRecord{EntityType: entityType, EntityID: entityID, DocumentType: documentType}
	err := r.pool.QueryRow(ctx,
		`SELECT expiry_date FROM `+table+` WHERE `+idColumn+` = $1 AND document_type = $2 AND active`,
		entityID, documentType,
	).Scan(&d.ExpiryDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s document for %s: %w", documentType, entityID, err)
	}
	return &d, nil
}

const complianceAlertColumns = `
	id, entity_type, entity_id, document_type, expiry_date,
	alert_level, status, created_at, resolved_at
`

func scanComplianceAlert(row pgx.Row) (*domain.ComplianceAlert, error) {
	var a domain.ComplianceAlert
	err := row.Scan(
		&a.ID, &a.EntityType, &a.EntityID, &a.DocumentType, &a.ExpiryDate,
		&a.Level, &a.Status, &a.CreatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOpenAlert returns the non-resolved alert for the document, or nil.
func (r *PostgresComplianceRepository) FindOpenAlert(ctx context.Context, entityType domain.EntityType, entityID string, documentType domain.DocumentType) (*domain.ComplianceAlert, error) {
	alert, err := scanComplianceAlert(r.pool.QueryRow(ctx,
		`SELECT `+complianceAlertColumns+` FROM compliance_alerts
		 WHERE entity_type = $1 AND entity_id = $2 AND document_type = $3 AND status <> 'resolved'
		 ORDER BY created_at DESC LIMIT 1`,
		entityType, entityID, documentType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open compliance alert: %w", err)
	}
	return alert, nil
}

// Insert stores a new alert.
func (r *PostgresComplianceRepository) Insert(ctx context.Context, alert *domain.ComplianceAlert) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO compliance_alerts
		 (id, entity_type, entity_id, document_type, expiry_date, alert_level, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		alert.ID, alert.EntityType, alert.EntityID, alert.DocumentType,
		alert.ExpiryDate, alert.Level, alert.Status, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert compliance alert: %w", err)
	}
	return nil
}

// UpdateLevel changes an open alert's level and tracked expiry date.
func (r *PostgresComplianceRepository) UpdateLevel(ctx context.Context, id string, level domain.AlertLevel, expiry time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE compliance_alerts SET alert_level = $2, expiry_date = $3 WHERE id = $1`,
		id, level, expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to update compliance alert %s: %w", id, err)
	}
	return nil
}

// Resolve closes the alert at the given time.
func (r *PostgresComplianceRepository) Resolve(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE compliance_alerts SET status = 'resolved', resolved_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve compliance alert %s: %w", id, err)
	}
	return nil
}

// ListOpenAlerts returns all non-resolved alerts.
func (r *PostgresComplianceRepository) ListOpenAlerts(ctx context.Context) ([]domain.ComplianceAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+complianceAlertColumns+` FROM compliance_alerts
		 WHERE status <> 'resolved' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open compliance alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.ComplianceAlert
	for rows.Next() {
		alert, err := scanComplianceAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance alert row: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}
