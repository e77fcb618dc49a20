package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops/internal/features/alerts/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAlertRepository implements ports.AlertRepository on pgx.
type PostgresAlertRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAlertRepository creates a new PostgresAlertRepository.
func NewPostgresAlertRepository(pool *pgxpool.Pool) *PostgresAlertRepository {
	return &PostgresAlertRepository{pool: pool}
}

const alertColumns = `
	id, trip_id, alert_type, title, description, severity, status,
	triggered_at, resolved_at, threshold_value, actual_value
`

func scanAlert(row pgx.Row) (*domain.TripAlert, error) {
	var a domain.TripAlert
	err := row.Scan(
		&a.ID, &a.TripID, &a.Type, &a.Title, &a.Description, &a.Severity, &a.Status,
		&a.TriggeredAt, &a.ResolvedAt, &a.ThresholdValue, &a.ActualValue,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOpenByType returns the open alert of the given type for the trip, or
// nil when none exists.
func (r *PostgresAlertRepository) FindOpenByType(ctx context.Context, tripID string, alertType domain.AlertType) (*domain.TripAlert, error) {
	alert, err := scanAlert(r.pool.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM trip_alerts
		 WHERE trip_id = $1 AND alert_type = $2 AND status IN ('active', 'acknowledged')
		 ORDER BY triggered_at DESC LIMIT 1`,
		tripID, alertType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open %s alert for trip %s: %w", alertType, tripID, err)
	}
	return alert, nil
}

// Insert stores a new alert.
func (r *PostgresAlertRepository) Insert(ctx context.Context, alert *domain.TripAlert) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trip_alerts
		 (id, trip_id, alert_type, title, description, severity, status,
		  triggered_at, threshold_value, actual_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		alert.ID, alert.TripID, alert.Type, alert.Title, alert.Description,
		alert.Severity, alert.Status, alert.TriggeredAt,
		alert.ThresholdValue, alert.ActualValue,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s alert for trip %s: %w", alert.Type, alert.TripID, err)
	}
	return nil
}

// ResolveByType marks all active alerts of the type for the trip as resolved.
func (r *PostgresAlertRepository) ResolveByType(ctx context.Context, tripID string, alertType domain.AlertType, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trip_alerts SET status = 'resolved', resolved_at = $3
		 WHERE trip_id = $1 AND alert_type = $2 AND status = 'active'`,
		tripID, alertType, at,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve %s alerts for trip %s: %w", alertType, tripID, err)
	}
	return nil
}

// CountOpen returns the number of active or acknowledged alerts for the trip.
func (r *PostgresAlertRepository) CountOpen(ctx context.Context, tripID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trip_alerts
		 WHERE trip_id = $1 AND status IN ('active', 'acknowledged')`,
		tripID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open alerts for trip %s: %w", tripID, err)
	}
	return count, nil
}

// GetAlert returns the alert by id, or nil when it does not exist.
func (r *PostgresAlertRepository) GetAlert(ctx context.Context, id string) (*domain.TripAlert, error) {
	alert, err := scanAlert(r.pool.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM trip_alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert %s: %w", id, err)
	}
	return alert, nil
}

// UpdateStatus changes the lifecycle state of one alert.
func (r *PostgresAlertRepository) UpdateStatus(ctx context.Context, id string, status domain.AlertStatus, resolvedAt *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trip_alerts SET status = $2, resolved_at = $3 WHERE id = $1`,
		id, status, resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	return nil
}

// ListByTrip returns all alerts for the trip, newest first.
func (r *PostgresAlertRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.TripAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+alertColumns+` FROM trip_alerts WHERE trip_id = $1 ORDER BY triggered_at DESC`,
		tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for trip %s: %w", tripID, err)
	}
	defer rows.Close()

	var alerts []domain.TripAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}
