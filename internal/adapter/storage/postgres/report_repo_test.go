package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReport(kind domain.ReportKind) *domain.RegulatoryReport {
	return &domain.RegulatoryReport{
		ID:          uuid.New(),
		Kind:        kind,
		Data:        json.RawMessage(`{"count":2}`),
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
		SubmittedTo: []string{"HKMA", "SFC"},
	}
}

func reportColumns() []string {
	return []string{"id", "kind", "data", "generated_at", "submitted_to"}
}

func TestReportRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rep := newTestReport(domain.ReportSuspiciousActivity)

	mock.ExpectExec("INSERT INTO regulatory_reports").
		WithArgs(rep.ID, rep.Kind, []byte(rep.Data), rep.GeneratedAt, rep.SubmittedTo).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewReportRepo(mock).Create(context.Background(), rep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO regulatory_reports").WillReturnError(errors.New("read-only"))

	err = NewReportRepo(mock).Create(context.Background(), newTestReport(domain.ReportReserveAudit))
	assert.Error(t, err)
}

func TestReportRepo_List(t *testing.T) {
	tests := []struct {
		name    string
		kind    *domain.ReportKind
		pattern string
		args    []any
	}{
		{
			name:    "all kinds",
			pattern: "SELECT .+ FROM regulatory_reports ORDER BY generated_at DESC LIMIT \\$1",
			args:    []any{5},
		},
		{
			name:    "filtered",
			kind:    func() *domain.ReportKind { k := domain.ReportReserveAudit; return &k }(),
			pattern: "SELECT .+ FROM regulatory_reports WHERE kind = \\$1 ORDER BY generated_at DESC LIMIT \\$2",
			args:    []any{domain.ReportReserveAudit, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			rep := newTestReport(domain.ReportReserveAudit)
			mock.ExpectQuery(tt.pattern).
				WithArgs(tt.args...).
				WillReturnRows(pgxmock.NewRows(reportColumns()).
					AddRow(rep.ID, rep.Kind, []byte(rep.Data), rep.GeneratedAt, rep.SubmittedTo))

			reports, err := NewReportRepo(mock).List(context.Background(), tt.kind, 5)
			require.NoError(t, err)
			require.Len(t, reports, 1)
			assert.Equal(t, rep.ID, reports[0].ID)
			assert.JSONEq(t, `{"count":2}`, string(reports[0].Data))
			assert.Equal(t, []string{"HKMA", "SFC"}, reports[0].SubmittedTo)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReportRepo_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM regulatory_reports").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(reportColumns()))

	reports, err := NewReportRepo(mock).List(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
	assert.NoError(t, mock.ExpectationsWereMet())
}
