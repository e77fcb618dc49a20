package service

import (
	"context"
	"fmt"
	"time"

	"fleetops/internal/core/logger"
	"fleetops/internal/features/compliance/domain"
	"fleetops/internal/features/compliance/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanResult summarizes one scanner run.
type ScanResult struct {
	DocumentsScanned int `json:"documents_scanned"`
	AlertsRaised     int `json:"alerts_raised"`
	LevelsUpdated    int `json:"levels_updated"`
	AlertsResolved   int `json:"alerts_resolved"`
}

// Scanner classifies every tracked document against the expiry thresholds
// and maintains compliance alerts. Safe to re-run on any cadence: a document
// whose expiry date has not changed never gets a duplicate alert nor a
// spurious resolution.
type Scanner struct {
	repo     ports.ComplianceRepository
	settings ports.SettingsProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(repo ports.ComplianceRepository, settings ports.SettingsProvider) *Scanner {
	return &Scanner{
		repo:     repo,
		settings: settings,
		now:      time.Now,
		logger:   logger.Get(),
	}
}

// Scan runs one full pass: raise or level-update alerts for breaching
// documents, then resolve open alerts whose document was renewed past all
// thresholds. One document's failure is logged and skipped.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	th := s.settings.Load(ctx)
	today := s.now()

	var result ScanResult

	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list documents: %w", err)
	}
	result.DocumentsScanned = len(docs)

	for _, doc := range docs {
		if err := s.scanDocument(ctx, doc, today, th.ComplianceWarningDays, th.ComplianceCriticalDays, &result); err != nil {
			s.logger.Error("Compliance scan failed for document",
				zap.String("entity_type", string(doc.EntityType)),
				zap.String("entity_id", doc.EntityID),
				zap.String("document_type", string(doc.DocumentType)),
				zap.Error(err),
			)
		}
	}

	open, err := s.repo.ListOpenAlerts(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list open compliance alerts: %w", err)
	}
	for _, alert := range open {
		if err := s.resolveIfRenewed(ctx, alert, today, th.ComplianceWarningDays, th.ComplianceCriticalDays, &result); err != nil {
			s.logger.Error("Compliance resolution check failed",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

// ListOpenAlerts returns all non-resolved compliance alerts.
func (s *Scanner) ListOpenAlerts(ctx context.Context) ([]domain.ComplianceAlert, error) {
	return s.repo.ListOpenAlerts(ctx)
}

func (s *Scanner) scanDocument(ctx context.Context, doc domain.DocumentRecord, today time.Time, warnDays, critDays int, result *ScanResult) error {
	level := domain.Classify(doc.ExpiryDate, today, warnDays, critDays)
	if level == domain.LevelNone {
		return nil
	}

	open, err := s.repo.FindOpenAlert(ctx, doc.EntityType, doc.EntityID, doc.DocumentType)
	if err != nil {
		return fmt.Errorf("failed to look up open alert: %w", err)
	}

	if open == nil {
		alert := &domain.ComplianceAlert{
			ID:           uuid.NewString(),
			EntityType:   doc.EntityType,
			EntityID:     doc.EntityID,
			DocumentType: doc.DocumentType,
			ExpiryDate:   domain.DateOnly(doc.ExpiryDate),
			Level:        level,
			Status:       domain.ComplianceActive,
			CreatedAt:    s.now(),
		}
		if err := s.repo.Insert(ctx, alert); err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
		result.AlertsRaised++
		s.logger.Info("Compliance alert raised",
			zap.String("entity_type", string(doc.EntityType)),
			zap.String("entity_id", doc.EntityID),
			zap.String("document_type", string(doc.DocumentType)),
			zap.String("level", string(level)),
		)
		return nil
	}

	if open.Level == level && domain.DateOnly(open.ExpiryDate).Equal(domain.DateOnly(doc.ExpiryDate)) {
		return nil
	}
	if err := s.repo.UpdateLevel(ctx, open.ID, level, domain.DateOnly(doc.ExpiryDate)); err != nil {
		return fmt.Errorf("failed to update alert level: %w", err)
	}
	result.LevelsUpdated++
	return nil
}

// resolveIfRenewed closes an alert only when the live document's expiry date
// differs from the one the alert tracks and no longer breaches a threshold.
func (s *Scanner) resolveIfRenewed(ctx context.Context, alert domain.ComplianceAlert, today time.Time, warnDays, critDays int, result *ScanResult) error {
	doc, err := s.repo.GetDocument(ctx, alert.EntityType, alert.EntityID, alert.DocumentType)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil
	}

	if domain.DateOnly(doc.ExpiryDate).Equal(domain.DateOnly(alert.ExpiryDate)) {
		return nil
	}
	if domain.Classify(doc.ExpiryDate, today, warnDays, critDays) != domain.LevelNone {
		return nil
	}

	if err := s.repo.Resolve(ctx, alert.ID, s.now()); err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	result.AlertsResolved++
	s.logger.Info("Compliance alert resolved",
		zap.String("alert_id", alert.ID),
		zap.String("entity_id", alert.EntityID),
		zap.String("document_type", string(alert.DocumentType)),
	)
	return nil
}
