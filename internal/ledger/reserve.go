package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// IdentityPricer values every asset at its nominal amount.
type IdentityPricer struct{}

// Value returns amount unchanged.
func (IdentityPricer) Value(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	return amount, nil
}

// ReserveAccount tracks issued units and the assets backing them.
// The ratio is recomputed on every mutation and kept alongside the balances.
type ReserveAccount struct {
	mu          sync.RWMutex
	issued      decimal.Decimal
	assets      map[string]decimal.Decimal
	ratio       decimal.Decimal
	lastAudit   time.Time
	requirement decimal.Decimal
	pricer      ports.AssetPricer
}

// NewReserveAccount creates an empty reserve. requirement is the minimum
// backing ratio a mint may leave behind (1.0 means fully backed).
func NewReserveAccount(requirement decimal.Decimal, pricer ports.AssetPricer) *ReserveAccount {
	if pricer == nil {
		pricer = IdentityPricer{}
	}
	return &ReserveAccount{
		issued:      decimal.Zero,
		assets:      make(map[string]decimal.Decimal),
		ratio:       decimal.NewFromInt(1),
		requirement: requirement,
		pricer:      pricer,
	}
}

// MintBacking records deposited assets and the units issued against them.
// Nothing changes unless the deposit covers amount and the resulting ratio
// stays at or above the requirement.
func (r *ReserveAccount) MintBacking(ctx context.Context, deposit map[string]decimal.Decimal, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	for _, v := range deposit {
		if v.IsNegative() {
			return apperror.ErrInvalidAmount()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deposited, err := r.value(ctx, deposit)
	if err != nil {
		return err
	}
	if deposited.LessThan(amount) {
		return apperror.ErrInsufficientReserveBacking()
	}

	merged := make(map[string]decimal.Decimal, len(r.assets)+len(deposit))
	for k, v := range r.assets {
		merged[k] = v
	}
	for k, v := range deposit {
		merged[k] = merged[k].Add(v)
	}

	issued := r.issued.Add(amount)
	ratio, err := r.ratioFor(ctx, merged, issued)
	if err != nil {
		return err
	}
	if ratio.LessThan(r.requirement) {
		return apperror.ErrInsufficientReserveBacking()
	}

	r.assets = merged
	r.issued = issued
	r.ratio = ratio
	return nil
}

// CanRelease reports whether amount units can be retired.
func (r *ReserveAccount) CanRelease(amount decimal.Decimal) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if amount.GreaterThan(r.issued) {
		return apperror.ErrInsufficientReserveBacking()
	}
	return nil
}

// ReleaseBacking retires amount issued units. Paying out specific assets to
// the redeemer is left to the settlement side.
func (r *ReserveAccount) ReleaseBacking(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if amount.GreaterThan(r.issued) {
		return apperror.ErrInsufficientReserveBacking()
	}

	issued := r.issued.Sub(amount)
	ratio, err := r.ratioFor(ctx, r.assets, issued)
	if err != nil {
		return err
	}

	r.issued = issued
	r.ratio = ratio
	return nil
}

// Ratio returns backing value over issued units, 1 when nothing is issued.
func (r *ReserveAccount) Ratio() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ratio
}

// Snapshot returns a detached copy of the reserve state.
func (r *ReserveAccount) Snapshot() domain.Reserve {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Audit reprices the backing, stamps the audit time and returns the result.
func (r *ReserveAccount) Audit(ctx context.Context, at time.Time) (domain.Reserve, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ratio, err := r.ratioFor(ctx, r.assets, r.issued)
	if err != nil {
		return domain.Reserve{}, err
	}
	r.ratio = ratio
	r.lastAudit = at
	return r.snapshotLocked(), nil
}

func (r *ReserveAccount) snapshotLocked() domain.Reserve {
	return domain.Reserve{
		IssuedBalance: r.issued,
		BackingAssets: r.assets,
		LastAudit:     r.lastAudit,
		ReserveRatio:  r.ratio,
	}.Clone()
}

func (r *ReserveAccount) ratioFor(ctx context.Context, assets map[string]decimal.Decimal, issued decimal.Decimal) (decimal.Decimal, error) {
	if issued.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	backing, err := r.value(ctx, assets)
	if err != nil {
		return decimal.Zero, err
	}
	return backing.Div(issued), nil
}

func (r *ReserveAccount) value(ctx context.Context, assets map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for asset, amount := range assets {
		v, err := r.pricer.Value(ctx, asset, amount)
		if err != nil {
			return decimal.Zero, apperror.InternalError(fmt.Errorf("price %s: %w", asset, err))
		}
		total = total.Add(v)
	}
	return total, nil
}
