package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StructuringPolicy decides what a structuring match does to the transaction.
type StructuringPolicy string

const (
	StructuringFlag   StructuringPolicy = "flag"
	StructuringReject StructuringPolicy = "reject"
)

// MonitorConfig holds the screening thresholds.
type MonitorConfig struct {
	// ReportingThreshold: single transactions at or above it are flagged.
	ReportingThreshold decimal.Decimal
	// HistoryWindow bounds how far back per-wallet history is kept and is
	// the structuring look-back.
	HistoryWindow time.Duration
	// HistoryCap bounds the number of observations kept per wallet.
	HistoryCap int
	// StructuringCap is the aggregate of sub-threshold outgoing amounts in
	// HistoryWindow above which structuring is suspected.
	StructuringCap    decimal.Decimal
	StructuringPolicy StructuringPolicy
	RapidWindow       time.Duration
	// RapidCount is the number of transactions in RapidWindow that is still normal.
	RapidCount        int
	HighRiskAddresses []string
}

type observation struct {
	at     time.Time
	amount decimal.Decimal
}

type finding struct {
	decision domain.Decision
	wallet   string
}

// ComplianceMonitor screens transfers against per-wallet rolling history and
// queues suspicious-activity records until the next report drains them.
type ComplianceMonitor struct {
	mu       sync.Mutex
	cfg      MonitorConfig
	highRisk map[string]struct{}
	history  map[string][]observation
	pending  []domain.SuspiciousActivity
	now      func() time.Time
	log      zerolog.Logger
}

// NewComplianceMonitor creates a monitor. now may be nil for wall-clock time.
func NewComplianceMonitor(cfg MonitorConfig, now func() time.Time, log zerolog.Logger) *ComplianceMonitor {
	if now == nil {
		now = time.Now
	}
	if cfg.StructuringPolicy == "" {
		cfg.StructuringPolicy = StructuringFlag
	}
	highRisk := make(map[string]struct{}, len(cfg.HighRiskAddresses))
	for _, a := range cfg.HighRiskAddresses {
		highRisk[a] = struct{}{}
	}
	return &ComplianceMonitor{
		cfg:      cfg,
		highRisk: highRisk,
		history:  make(map[string][]observation),
		now:      now,
		log:      log,
	}
}

// Monitor screens a prospective transfer. Every matched rule queues a
// suspicious-activity record; the returned decision is the most restrictive
// outcome among them. The attempt is added to the source wallet's history.
func (m *ComplianceMonitor) Monitor(tx domain.Transaction) domain.Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	wallet := tx.FromAddress
	history := m.prune(wallet, now)

	var findings []finding

	for _, addr := range []string{tx.FromAddress, tx.ToAddress} {
		if _, ok := m.highRisk[addr]; ok {
			findings = append(findings, finding{wallet: addr, decision: domain.Decision{
				Outcome:  domain.DecisionReject,
				Kind:     domain.ActivityHighRiskCounterparty,
				Reason:   fmt.Sprintf("counterparty %s is on the watch list", addr),
				Severity: domain.SeverityHigh,
			}})
			break
		}
	}

	if tx.Amount.GreaterThanOrEqual(m.cfg.ReportingThreshold) {
		findings = append(findings, finding{wallet: wallet, decision: domain.Decision{
			Outcome:  domain.DecisionFlag,
			Kind:     domain.ActivityUnusualPattern,
			Reason:   fmt.Sprintf("amount %s at or above reporting threshold %s", tx.Amount, m.cfg.ReportingThreshold),
			Severity: domain.SeverityMedium,
		}})
	} else {
		sum := tx.Amount
		for _, o := range history {
			if o.amount.LessThan(m.cfg.ReportingThreshold) {
				sum = sum.Add(o.amount)
			}
		}
		if sum.GreaterThan(m.cfg.StructuringCap) {
			outcome := domain.DecisionFlag
			if m.cfg.StructuringPolicy == StructuringReject {
				outcome = domain.DecisionReject
			}
			findings = append(findings, finding{wallet: wallet, decision: domain.Decision{
				Outcome:  outcome,
				Kind:     domain.ActivityStructuring,
				Reason:   fmt.Sprintf("sub-threshold outgoing total %s within %s exceeds %s", sum, m.cfg.HistoryWindow, m.cfg.StructuringCap),
				Severity: domain.SeverityMedium,
			}})
		}
	}

	recent := 1
	for _, o := range history {
		if now.Sub(o.at) <= m.cfg.RapidWindow {
			recent++
		}
	}
	if recent > m.cfg.RapidCount {
		findings = append(findings, finding{wallet: wallet, decision: domain.Decision{
			Outcome:  domain.DecisionFlag,
			Kind:     domain.ActivityRapidTransactions,
			Reason:   fmt.Sprintf("%d transactions within %s", recent, m.cfg.RapidWindow),
			Severity: domain.SeverityLow,
		}})
	}

	decision := domain.Allow()
	for _, f := range findings {
		m.pending = append(m.pending, domain.SuspiciousActivity{
			WalletAddress: f.wallet,
			Kind:          f.decision.Kind,
			Description:   f.decision.Reason,
			DetectedAt:    now,
			Severity:      f.decision.Severity,
			TransactionID: tx.ID,
		})
		if f.decision.Stricter(decision) {
			decision = f.decision
		}
	}

	m.record(wallet, history, observation{at: now, amount: tx.Amount})

	if len(findings) > 0 {
		m.log.Warn().
			Str("tx_id", tx.ID.String()).
			Str("wallet", wallet).
			Str("outcome", string(decision.Outcome)).
			Str("kind", string(decision.Kind)).
			Int("findings", len(findings)).
			Msg("compliance rule matched")
	}

	return decision
}

// Pending returns a copy of the queued records without draining them.
func (m *ComplianceMonitor) Pending() []domain.SuspiciousActivity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.SuspiciousActivity, len(m.pending))
	copy(out, m.pending)
	return out
}

type suspiciousActivityPayload struct {
	Count      int                         `json:"count"`
	Activities []domain.SuspiciousActivity `json:"activities"`
}

// DrainReport bundles every queued record into a SUSPICIOUS_ACTIVITY report
// and clears the queue. It returns nil when nothing is queued.
func (m *ComplianceMonitor) DrainReport(authorities []string) (*domain.RegulatoryReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(suspiciousActivityPayload{
		Count:      len(m.pending),
		Activities: m.pending,
	})
	if err != nil {
		return nil, apperror.ErrSerialization(err)
	}

	submittedTo := make([]string, len(authorities))
	copy(submittedTo, authorities)

	report := &domain.RegulatoryReport{
		ID:          uuid.New(),
		Kind:        domain.ReportSuspiciousActivity,
		Data:        data,
		GeneratedAt: m.now(),
		SubmittedTo: submittedTo,
	}
	m.pending = nil
	return report, nil
}

// prune drops observations that fell out of the history window.
func (m *ComplianceMonitor) prune(wallet string, now time.Time) []observation {
	history := m.history[wallet]
	cut := 0
	for cut < len(history) && now.Sub(history[cut].at) > m.cfg.HistoryWindow {
		cut++
	}
	if cut > 0 {
		history = append([]observation(nil), history[cut:]...)
		m.history[wallet] = history
	}
	return history
}

func (m *ComplianceMonitor) record(wallet string, history []observation, o observation) {
	history = append(history, o)
	if m.cfg.HistoryCap > 0 && len(history) > m.cfg.HistoryCap {
		history = append([]observation(nil), history[len(history)-m.cfg.HistoryCap:]...)
	}
	m.history[wallet] = history
}
