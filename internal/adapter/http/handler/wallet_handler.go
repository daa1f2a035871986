package handler

import (
	"strconv"

	"stablecoin-ledger/internal/adapter/http/dto"
	"stablecoin-ledger/internal/adapter/http/middleware"
	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"
	"stablecoin-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// WalletHandler handles wallet provisioning and lookups.
type WalletHandler struct {
	ledger       ports.LedgerService
	provisioning ports.ProvisioningService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService, provisioning ports.ProvisioningService) *WalletHandler {
	return &WalletHandler{ledger: ledger, provisioning: provisioning}
}

// Register handles POST /api/v1/wallets.
func (h *WalletHandler) Register(c *gin.Context) {
	var req dto.RegisterWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	tier, err := domain.ParseKycTier(req.KycTier)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.provisioning.RegisterWallet(c.Request.Context(), ports.RegisterWalletRequest{
		Address: req.Address,
		KycTier: tier,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWalletResponse(wallet))
}

// Get handles GET /api/v1/wallets/:address.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.ledger.GetWallet(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}

// ListTransactions handles GET /api/v1/wallets/:address/transactions?limit=.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	limit, err := queryLimit(c, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, err := h.ledger.ListTransactions(c.Request.Context(), c.Param("address"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionListResponse(txns))
}

// bindJSON binds and sanitizes the body, writing a validation error on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, apperror.ErrPayloadTooLarge(middleware.BodyLimitFrom(c)))
			return false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

// queryLimit reads ?limit=, falling back to def and clamping to max.
func queryLimit(c *gin.Context, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.Validation("limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
