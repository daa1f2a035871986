package service

import (
	"context"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	ledger ports.LedgerService
	repo   ports.ReportRepository
	log    zerolog.Logger
}

// NewReportingService creates a new reporting service.
// If repo is nil, reports are returned but not archived.
func NewReportingService(
	ledger ports.LedgerService,
	repo ports.ReportRepository,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		ledger: ledger,
		repo:   repo,
		log:    log,
	}
}

// GenerateSuspiciousActivityReport drains the alert queue into a report.
// Returns nil when nothing is pending.
func (s *reportingService) GenerateSuspiciousActivityReport(ctx context.Context) (*domain.RegulatoryReport, error) {
	report, err := s.ledger.DrainReport(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}
	s.archive(ctx, report)
	return report, nil
}

// GenerateReserveAuditReport audits the reserve and archives the result.
func (s *reportingService) GenerateReserveAuditReport(ctx context.Context) (*domain.RegulatoryReport, error) {
	report, err := s.ledger.AuditReserve(ctx)
	if err != nil {
		return nil, err
	}
	s.archive(ctx, report)
	return report, nil
}

// ListReports returns archived reports, newest first.
func (s *reportingService) ListReports(ctx context.Context, kind *domain.ReportKind, limit int) ([]domain.RegulatoryReport, error) {
	if s.repo == nil {
		return []domain.RegulatoryReport{}, nil
	}
	if limit <= 0 {
		limit = defaultReportLimit
	}
	if limit > maxReportLimit {
		limit = maxReportLimit
	}

	reports, err := s.repo.List(ctx, kind, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return reports, nil
}

// archive is best effort: a drained queue cannot be refilled, so the report
// is still handed back to the caller when persistence fails.
func (s *reportingService) archive(ctx context.Context, report *domain.RegulatoryReport) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, report); err != nil {
		s.log.Error().Err(err).
			Str("report_id", report.ID.String()).
			Str("kind", string(report.Kind)).
			Msg("failed to archive regulatory report")
	}
}
