package handler

import (
	"stablecoin-ledger/internal/adapter/http/dto"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReserveHandler exposes the reserve snapshot and audits.
type ReserveHandler struct {
	ledger    ports.LedgerService
	reporting ports.ReportingService
}

func NewReserveHandler(ledger ports.LedgerService, reporting ports.ReportingService) *ReserveHandler {
	return &ReserveHandler{ledger: ledger, reporting: reporting}
}

// Get handles GET /api/v1/reserve.
func (h *ReserveHandler) Get(c *gin.Context) {
	response.OK(c, dto.NewReserveResponse(h.ledger.GetReserve(c.Request.Context())))
}

// Audit handles POST /api/v1/reserve/audit. The report is archived as well.
func (h *ReserveHandler) Audit(c *gin.Context) {
	report, err := h.reporting.GenerateReserveAuditReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewReportResponse(report))
}
