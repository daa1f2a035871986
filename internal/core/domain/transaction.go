package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel counterparties for reserve-originated movements.
const (
	ReserveMintAddress = "RESERVE_MINT"
	ReserveBurnAddress = "RESERVE_BURN"
)

// TransactionKind represents the kind of ledger movement.
type TransactionKind string

const (
	TransactionKindTransfer TransactionKind = "TRANSFER"
	TransactionKindMint     TransactionKind = "MINT"
	TransactionKindBurn     TransactionKind = "BURN"
	TransactionKindFreeze   TransactionKind = "FREEZE"
	TransactionKindUnfreeze TransactionKind = "UNFREEZE"
)

// TransactionStatus is set once when the record is created.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	// TransactionStatusFrozen marks an attempt held by compliance screening.
	TransactionStatusFrozen TransactionStatus = "FROZEN"
)

// TransactionMetadata is optional caller-supplied context.
type TransactionMetadata struct {
	Reference            *string `json:"reference,omitempty"`
	Purpose              *string `json:"purpose,omitempty"`
	RegulatoryApprovalID *string `json:"regulatory_approval_id,omitempty"`
	IdempotencyKey       *string `json:"idempotency_key,omitempty"`
}

// Transaction is an immutable ledger record.
type Transaction struct {
	ID          uuid.UUID            `json:"id"`
	FromAddress string               `json:"from_address"`
	ToAddress   string               `json:"to_address"`
	Amount      decimal.Decimal      `json:"amount"`
	Kind        TransactionKind      `json:"kind"`
	Status      TransactionStatus    `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	Metadata    *TransactionMetadata `json:"metadata,omitempty"`
	Screening   *Decision            `json:"screening,omitempty"`
}

// IdempotencyKey returns the caller-supplied key, or "" when none was given.
func (t *Transaction) IdempotencyKey() string {
	if t.Metadata == nil || t.Metadata.IdempotencyKey == nil {
		return ""
	}
	return *t.Metadata.IdempotencyKey
}

// Clone returns a deep copy so callers can never alias a recorded transaction.
func (t *Transaction) Clone() Transaction {
	c := *t
	if t.Metadata != nil {
		m := *t.Metadata
		c.Metadata = &m
	}
	if t.Screening != nil {
		s := *t.Screening
		c.Screening = &s
	}
	return c
}
