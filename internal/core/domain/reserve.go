package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reserve is a snapshot of the fiat/asset backing for issued units.
type Reserve struct {
	IssuedBalance decimal.Decimal            `json:"issued_balance"`
	BackingAssets map[string]decimal.Decimal `json:"backing_assets"`
	LastAudit     time.Time                  `json:"last_audit"`
	ReserveRatio  decimal.Decimal            `json:"reserve_ratio"`
}

// Clone copies the asset map.
func (r Reserve) Clone() Reserve {
	assets := make(map[string]decimal.Decimal, len(r.BackingAssets))
	for k, v := range r.BackingAssets {
		assets[k] = v
	}
	r.BackingAssets = assets
	return r
}
