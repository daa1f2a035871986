package handler

import (
	"stablecoin-ledger/internal/adapter/http/dto"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"
	"stablecoin-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles mint, transfer and burn.
type TransactionHandler struct {
	ledger ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// Mint handles POST /api/v1/transactions/mint.
func (h *TransactionHandler) Mint(c *gin.Context) {
	var req dto.MintRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}
	backing := make(map[string]decimal.Decimal, len(req.Backing))
	for asset, raw := range req.Backing {
		v, err := dto.ParseAmount(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid backing amount for "+asset))
			return
		}
		backing[asset] = v
	}

	tx, err := h.ledger.Mint(c.Request.Context(), ports.MintRequest{
		To:       req.To,
		Amount:   amount,
		Backing:  backing,
		Metadata: req.Metadata.ToMetadata(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTransactionResponse(tx))
}

// Transfer handles POST /api/v1/transactions/transfer.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	tx, err := h.ledger.Transfer(c.Request.Context(), ports.TransferRequest{
		From:     req.From,
		To:       req.To,
		Amount:   amount,
		Metadata: req.Metadata.ToMetadata(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTransactionResponse(tx))
}

// Burn handles POST /api/v1/transactions/burn.
func (h *TransactionHandler) Burn(c *gin.Context) {
	var req dto.BurnRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	tx, err := h.ledger.Burn(c.Request.Context(), ports.BurnRequest{
		From:     req.From,
		Amount:   amount,
		Metadata: req.Metadata.ToMetadata(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTransactionResponse(tx))
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	tx, err := h.ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(tx))
}
