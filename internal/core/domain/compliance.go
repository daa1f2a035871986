package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKind classifies a suspicious pattern.
type ActivityKind string

const (
	ActivityRapidTransactions    ActivityKind = "RAPID_TRANSACTIONS"
	ActivityStructuring          ActivityKind = "STRUCTURING"
	ActivityHighRiskCounterparty ActivityKind = "HIGH_RISK_COUNTERPARTY"
	ActivityUnusualPattern       ActivityKind = "UNUSUAL_PATTERN"
)

// Severity of a suspicious activity record.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SuspiciousActivity is queued for the next suspicious-activity report.
type SuspiciousActivity struct {
	WalletAddress string       `json:"wallet_address"`
	Kind          ActivityKind `json:"kind"`
	Description   string       `json:"description"`
	DetectedAt    time.Time    `json:"detected_at"`
	Severity      Severity     `json:"severity"`
	TransactionID uuid.UUID    `json:"transaction_id"`
}

// DecisionOutcome is the verdict of compliance screening.
type DecisionOutcome string

const (
	DecisionAllow  DecisionOutcome = "ALLOW"
	DecisionFlag   DecisionOutcome = "FLAG"
	DecisionReject DecisionOutcome = "REJECT"
)

// weight orders outcomes from least to most restrictive. Unknown outcomes
// rank below ALLOW so they can never replace a known decision.
func (o DecisionOutcome) weight() int {
	switch o {
	case DecisionReject:
		return 2
	case DecisionFlag:
		return 1
	case DecisionAllow:
		return 0
	default:
		return -1
	}
}

// Decision is the screening result threaded into the transaction record.
// Kind, Reason and Severity are empty for ALLOW.
type Decision struct {
	Outcome  DecisionOutcome `json:"outcome"`
	Kind     ActivityKind    `json:"kind,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Severity Severity        `json:"severity,omitempty"`
}

// Allow is the zero-finding decision.
func Allow() Decision {
	return Decision{Outcome: DecisionAllow}
}

// Stricter reports whether d is more restrictive than other.
func (d Decision) Stricter(other Decision) bool {
	return d.Outcome.weight() > other.Outcome.weight()
}

// Blocks reports whether the decision prevents the transaction.
func (d Decision) Blocks() bool {
	return d.Outcome == DecisionReject
}
