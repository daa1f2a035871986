package postgres

import (
	"context"
	"fmt"

	"stablecoin-ledger/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository.
type ReportRepo struct {
	pool Pool
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(pool Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create archives a generated report.
func (r *ReportRepo) Create(ctx context.Context, rep *domain.RegulatoryReport) error {
	query := `INSERT INTO regulatory_reports (id, kind, data, generated_at, submitted_to)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		rep.ID, rep.Kind, []byte(rep.Data), rep.GeneratedAt, rep.SubmittedTo,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List returns archived reports newest first, optionally filtered by kind.
func (r *ReportRepo) List(ctx context.Context, kind *domain.ReportKind, limit int) ([]domain.RegulatoryReport, error) {
	query := `SELECT id, kind, data, generated_at, submitted_to FROM regulatory_reports`
	args := []any{}
	if kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, *kind)
	}
	query += fmt.Sprintf(` ORDER BY generated_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.RegulatoryReport{}
	for rows.Next() {
		var (
			rep  domain.RegulatoryReport
			data []byte
		)
		if err := rows.Scan(&rep.ID, &rep.Kind, &data, &rep.GeneratedAt, &rep.SubmittedTo); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		rep.Data = data
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return reports, nil
}
