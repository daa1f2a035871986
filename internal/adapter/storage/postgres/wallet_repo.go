package postgres

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
// It stores identity and KYC tier only; balances and freeze state live in the engine.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the directory.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (address, kyc_tier, created_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, w.Address, w.KycTier, w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrWalletExists(w.Address)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAddress fetches a wallet by address. Returns nil when absent.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT address, kyc_tier, created_at FROM wallets WHERE address = $1`

	w := &domain.Wallet{Balance: decimal.Zero}
	err := r.pool.QueryRow(ctx, query, address).Scan(&w.Address, &w.KycTier, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// List returns every provisioned wallet, oldest first, for seeding the engine.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT address, kyc_tier, created_at FROM wallets ORDER BY created_at, address`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w := domain.Wallet{Balance: decimal.Zero}
		if err := rows.Scan(&w.Address, &w.KycTier, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}
