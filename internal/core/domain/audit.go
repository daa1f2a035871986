package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited operator action.
type AuditAction string

const (
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionRegisterWallet AuditAction = "REGISTER_WALLET"
	AuditActionMint           AuditAction = "MINT"
	AuditActionTransfer       AuditAction = "TRANSFER"
	AuditActionBurn           AuditAction = "BURN"
	AuditActionFreeze         AuditAction = "FREEZE"
	AuditActionUnfreeze       AuditAction = "UNFREEZE"
	AuditActionReserveAudit   AuditAction = "RESERVE_AUDIT"
	AuditActionReport         AuditAction = "REPORT"
)

// AuditLog records a single audited operator action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Operator     string      `json:"operator,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
