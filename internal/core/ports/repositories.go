package ports

import (
	"context"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// WalletRepository is the provisioning directory the ledger is seeded from.
// Balances stored here are opening balances; the live balance is owned by the engine.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
}

// TransactionRepository is the durable journal of recorded ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByAddress(ctx context.Context, address string, limit int) ([]domain.Transaction, error)
}

// ReportRepository archives generated regulatory reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.RegulatoryReport) error
	List(ctx context.Context, kind *domain.ReportKind, limit int) ([]domain.RegulatoryReport, error)
}

// AuditRepository persists operator audit trail entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}
