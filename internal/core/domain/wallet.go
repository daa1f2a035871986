package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// KycTier is the identity-verification level decided by the provisioning service.
type KycTier string

const (
	KycTierPending          KycTier = "PENDING"
	KycTierVerified         KycTier = "VERIFIED"
	KycTierEnhancedVerified KycTier = "ENHANCED_VERIFIED"
	// KycTierRejected is terminal and blocks all activity.
	KycTierRejected KycTier = "REJECTED"
)

// rank orders the satisfiable tiers. REJECTED and unknown values have no rank.
func (t KycTier) rank() (int, bool) {
	switch t {
	case KycTierPending:
		return 0, true
	case KycTierVerified:
		return 1, true
	case KycTierEnhancedVerified:
		return 2, true
	case KycTierRejected:
		return 0, false
	default:
		return 0, false
	}
}

// Satisfies reports whether t meets the required tier.
// REJECTED never satisfies anything and is never a satisfiable requirement.
func (t KycTier) Satisfies(required KycTier) bool {
	have, ok := t.rank()
	if !ok {
		return false
	}
	need, ok := required.rank()
	if !ok {
		return false
	}
	return have >= need
}

// IsValid reports whether t is one of the known tiers.
func (t KycTier) IsValid() bool {
	switch t {
	case KycTierPending, KycTierVerified, KycTierEnhancedVerified, KycTierRejected:
		return true
	default:
		return false
	}
}

// ParseKycTier accepts the tier name in any case.
func ParseKycTier(s string) (KycTier, error) {
	t := KycTier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown kyc tier %q", s)
	}
	return t, nil
}

// Wallet is a custodial account holding issued units.
type Wallet struct {
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
	Frozen    bool            `json:"frozen"`
	KycTier   KycTier         `json:"kyc_tier"`
	CreatedAt time.Time       `json:"created_at"`
}

// CanTransact reports whether the wallet may take part in value movement
// under the given minimum tier.
func (w *Wallet) CanTransact(minTier KycTier) bool {
	return !w.Frozen && w.KycTier.Satisfies(minTier)
}
