package dto

import (
	"encoding/json"
	"time"

	"stablecoin-ledger/internal/core/domain"
)

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RegisterWalletRequest provisions a wallet whose KYC tier was decided upstream.
type RegisterWalletRequest struct {
	Address string `json:"address" binding:"required,address"`
	KycTier string `json:"kyc_tier" binding:"required,kyc_tier"`
}

// MetadataRequest carries optional caller annotations and the idempotency key.
type MetadataRequest struct {
	Reference            *string `json:"reference,omitempty" binding:"omitempty,max=100"`
	Purpose              *string `json:"purpose,omitempty" binding:"omitempty,max=255"`
	RegulatoryApprovalID *string `json:"regulatory_approval_id,omitempty" binding:"omitempty,max=100"`
	IdempotencyKey       *string `json:"idempotency_key,omitempty" binding:"omitempty,min=1,max=128,safe_id"`
}

// MintRequest issues units to a wallet against deposited backing assets.
// Amounts are decimal strings to avoid float rounding on the wire.
type MintRequest struct {
	To       string            `json:"to" binding:"required,address"`
	Amount   string            `json:"amount" binding:"required,positive_decimal"`
	Backing  map[string]string `json:"backing" binding:"required,min=1,dive,keys,safe_id,endkeys,positive_decimal"`
	Metadata *MetadataRequest  `json:"metadata,omitempty"`
}

// TransferRequest moves units between two wallets.
type TransferRequest struct {
	From     string           `json:"from" binding:"required,address"`
	To       string           `json:"to" binding:"required,address"`
	Amount   string           `json:"amount" binding:"required,positive_decimal"`
	Metadata *MetadataRequest `json:"metadata,omitempty"`
}

// BurnRequest redeems units from a wallet.
type BurnRequest struct {
	From     string           `json:"from" binding:"required,address"`
	Amount   string           `json:"amount" binding:"required,positive_decimal"`
	Metadata *MetadataRequest `json:"metadata,omitempty"`
}

// ReportRequest selects which regulatory report to generate.
type ReportRequest struct {
	Kind string `json:"kind" binding:"required,oneof=SUSPICIOUS_ACTIVITY RESERVE_AUDIT"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Frozen    bool   `json:"frozen"`
	KycTier   string `json:"kyc_tier"`
	CreatedAt string `json:"created_at"`
}

// TransactionResponse is the response body for a recorded ledger transaction.
type TransactionResponse struct {
	ID          string                      `json:"id"`
	FromAddress string                      `json:"from_address"`
	ToAddress   string                      `json:"to_address"`
	Amount      string                      `json:"amount"`
	Kind        string                      `json:"kind"`
	Status      string                      `json:"status"`
	CreatedAt   string                      `json:"created_at"`
	Metadata    *domain.TransactionMetadata `json:"metadata,omitempty"`
	Screening   *domain.Decision            `json:"screening,omitempty"`
}

// ReserveResponse is the response for the reserve snapshot.
type ReserveResponse struct {
	IssuedBalance string            `json:"issued_balance"`
	BackingAssets map[string]string `json:"backing_assets"`
	ReserveRatio  string            `json:"reserve_ratio"`
	LastAudit     *string           `json:"last_audit,omitempty"`
}

// AlertResponse is one queued suspicious activity.
type AlertResponse struct {
	WalletAddress string `json:"wallet_address"`
	Kind          string `json:"kind"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
	TransactionID string `json:"transaction_id"`
	DetectedAt    string `json:"detected_at"`
}

// ReportResponse is a generated or archived regulatory report.
type ReportResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Data        json.RawMessage `json:"data"`
	GeneratedAt string          `json:"generated_at"`
	SubmittedTo []string        `json:"submitted_to"`
}

// ToMetadata converts request metadata to the domain form. Nil stays nil.
func (m *MetadataRequest) ToMetadata() *domain.TransactionMetadata {
	if m == nil {
		return nil
	}
	return &domain.TransactionMetadata{
		Reference:            m.Reference,
		Purpose:              m.Purpose,
		RegulatoryApprovalID: m.RegulatoryApprovalID,
		IdempotencyKey:       m.IdempotencyKey,
	}
}

// NewWalletResponse builds the wallet view.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		Address:   w.Address,
		Balance:   w.Balance.String(),
		Frozen:    w.Frozen,
		KycTier:   string(w.KycTier),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

// NewTransactionResponse builds the transaction view.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Amount:      t.Amount.String(),
		Kind:        string(t.Kind),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
		Metadata:    t.Metadata,
		Screening:   t.Screening,
	}
}

// NewTransactionListResponse builds views for a page of transactions.
func NewTransactionListResponse(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, NewTransactionResponse(&txns[i]))
	}
	return out
}

// NewReserveResponse builds the reserve view. A never-audited reserve omits last_audit.
func NewReserveResponse(r domain.Reserve) ReserveResponse {
	assets := make(map[string]string, len(r.BackingAssets))
	for asset, amount := range r.BackingAssets {
		assets[asset] = amount.String()
	}
	resp := ReserveResponse{
		IssuedBalance: r.IssuedBalance.String(),
		BackingAssets: assets,
		ReserveRatio:  r.ReserveRatio.String(),
	}
	if !r.LastAudit.IsZero() {
		s := r.LastAudit.Format(time.RFC3339)
		resp.LastAudit = &s
	}
	return resp
}

// NewAlertListResponse builds views for queued suspicious activities.
func NewAlertListResponse(alerts []domain.SuspiciousActivity) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			WalletAddress: a.WalletAddress,
			Kind:          string(a.Kind),
			Severity:      string(a.Severity),
			Description:   a.Description,
			TransactionID: a.TransactionID.String(),
			DetectedAt:    a.DetectedAt.Format(time.RFC3339),
		})
	}
	return out
}

// NewReportResponse builds the report view.
func NewReportResponse(r *domain.RegulatoryReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID.String(),
		Kind:        string(r.Kind),
		Data:        r.Data,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		SubmittedTo: r.SubmittedTo,
	}
}
