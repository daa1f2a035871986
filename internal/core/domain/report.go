package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReportKind is the regulatory report category.
type ReportKind string

const (
	ReportDailyTransaction   ReportKind = "DAILY_TRANSACTION"
	ReportReserveAudit       ReportKind = "RESERVE_AUDIT"
	ReportSuspiciousActivity ReportKind = "SUSPICIOUS_ACTIVITY"
	ReportMonthlyCompliance  ReportKind = "MONTHLY_COMPLIANCE"
)

// IsValid reports whether k is a known report kind.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportDailyTransaction, ReportReserveAudit, ReportSuspiciousActivity, ReportMonthlyCompliance:
		return true
	}
	return false
}

// RegulatoryReport bundles data for submission to the named authorities.
// Data is opaque to the ledger once built.
type RegulatoryReport struct {
	ID          uuid.UUID       `json:"id"`
	Kind        ReportKind      `json:"kind"`
	Data        json.RawMessage `json:"data"`
	GeneratedAt time.Time       `json:"generated_at"`
	SubmittedTo []string        `json:"submitted_to"`
}
