package ledger

import (
	"strings"
	"sync"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// WalletLedger owns the address to wallet table. The balance check and the
// mutation of Debit happen under one lock, so no interleaving of callers can
// take a balance below zero.
type WalletLedger struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

// NewWalletLedger creates an empty wallet table.
func NewWalletLedger() *WalletLedger {
	return &WalletLedger{wallets: make(map[string]*domain.Wallet)}
}

// Register adds a provisioned wallet. Wallets are never removed.
func (l *WalletLedger) Register(w domain.Wallet) error {
	if strings.TrimSpace(w.Address) == "" {
		return apperror.Validation("wallet address is required")
	}
	if !w.KycTier.IsValid() {
		return apperror.Validation("unknown kyc tier")
	}
	if w.Balance.IsNegative() {
		return apperror.ErrInvalidAmount()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.wallets[w.Address]; ok {
		return apperror.ErrWalletExists(w.Address)
	}
	l.wallets[w.Address] = &w
	return nil
}

// Credit adds amount to the wallet balance.
func (l *WalletLedger) Credit(address string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wallets[address]
	if !ok {
		return apperror.ErrWalletNotFound(address)
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Debit subtracts amount from the wallet balance if funds suffice.
func (l *WalletLedger) Debit(address string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wallets[address]
	if !ok {
		return apperror.ErrWalletNotFound(address)
	}
	if w.Balance.LessThan(amount) {
		return apperror.ErrInsufficientBalance()
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Get returns a copy of the wallet.
func (l *WalletLedger) Get(address string) (domain.Wallet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	w, ok := l.wallets[address]
	if !ok {
		return domain.Wallet{}, false
	}
	return *w, true
}

// SetFrozen places or lifts a regulatory hold.
func (l *WalletLedger) SetFrozen(address string, frozen bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wallets[address]
	if !ok {
		return apperror.ErrWalletNotFound(address)
	}
	w.Frozen = frozen
	return nil
}

// Total sums every wallet balance.
func (l *WalletLedger) Total() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, w := range l.wallets {
		total = total.Add(w.Balance)
	}
	return total
}

// Len is the number of registered wallets.
func (l *WalletLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.wallets)
}
