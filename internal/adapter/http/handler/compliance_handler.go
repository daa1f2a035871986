package handler

import (
	"stablecoin-ledger/internal/adapter/http/dto"
	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"
	"stablecoin-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
)

// ComplianceHandler handles alerts, freezes and regulatory reports.
type ComplianceHandler struct {
	ledger    ports.LedgerService
	reporting ports.ReportingService
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(ledger ports.LedgerService, reporting ports.ReportingService) *ComplianceHandler {
	return &ComplianceHandler{ledger: ledger, reporting: reporting}
}

// Alerts handles GET /api/v1/compliance/alerts. Alerts stay queued.
func (h *ComplianceHandler) Alerts(c *gin.Context) {
	response.OK(c, dto.NewAlertListResponse(h.ledger.PendingAlerts(c.Request.Context())))
}

// Freeze handles POST /api/v1/compliance/freeze/:address.
func (h *ComplianceHandler) Freeze(c *gin.Context) {
	tx, err := h.ledger.Freeze(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(tx))
}

// Unfreeze handles POST /api/v1/compliance/unfreeze/:address.
func (h *ComplianceHandler) Unfreeze(c *gin.Context) {
	tx, err := h.ledger.Unfreeze(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(tx))
}

// GenerateReport handles POST /api/v1/compliance/reports.
// An empty suspicious-activity queue yields 204.
func (h *ComplianceHandler) GenerateReport(c *gin.Context) {
	var req dto.ReportRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		report *domain.RegulatoryReport
		err    error
	)
	switch domain.ReportKind(req.Kind) {
	case domain.ReportSuspiciousActivity:
		report, err = h.reporting.GenerateSuspiciousActivityReport(c.Request.Context())
	case domain.ReportReserveAudit:
		report, err = h.reporting.GenerateReserveAuditReport(c.Request.Context())
	default:
		err = apperror.Validation("unsupported report kind")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	if report == nil {
		response.NoContent(c)
		return
	}
	response.Created(c, dto.NewReportResponse(report))
}

// ListReports handles GET /api/v1/compliance/reports?kind=&limit=.
func (h *ComplianceHandler) ListReports(c *gin.Context) {
	limit, err := queryLimit(c, defaultReportLimit, maxReportLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	var kind *domain.ReportKind
	if raw := c.Query("kind"); raw != "" {
		k := domain.ReportKind(raw)
		if !k.IsValid() {
			response.Error(c, apperror.Validation("unknown report kind"))
			return
		}
		kind = &k
	}

	reports, err := h.reporting.ListReports(c.Request.Context(), kind, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, dto.NewReportResponse(&reports[i]))
	}
	response.OK(c, out)
}
