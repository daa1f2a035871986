package ports

import (
	"context"
	"time"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(operator string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Operator  string
	TokenID   string
	ExpiresAt time.Time
}

// IdempotencyCache is the Redis-layer idempotency check. It outlives the
// in-memory transaction log across restarts.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached transaction JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AssetPricer values a quantity of a backing asset in issued units.
// The default implementation treats every amount as already priced.
type AssetPricer interface {
	Value(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService is the transactional core: wallets, reserve, compliance and log.
type LedgerService interface {
	Mint(ctx context.Context, req MintRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
	Burn(ctx context.Context, req BurnRequest) (*domain.Transaction, error)
	Freeze(ctx context.Context, address string) (*domain.Transaction, error)
	Unfreeze(ctx context.Context, address string) (*domain.Transaction, error)

	RegisterWallet(ctx context.Context, wallet domain.Wallet) error
	GetWallet(ctx context.Context, address string) (*domain.Wallet, error)
	GetReserve(ctx context.Context) domain.Reserve
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, address string, limit int) ([]domain.Transaction, error)

	PendingAlerts(ctx context.Context) []domain.SuspiciousActivity
	DrainReport(ctx context.Context) (*domain.RegulatoryReport, error)
	AuditReserve(ctx context.Context) (*domain.RegulatoryReport, error)
}

// MintRequest issues new units against deposited backing assets.
type MintRequest struct {
	To       string
	Amount   decimal.Decimal
	Backing  map[string]decimal.Decimal
	Metadata *domain.TransactionMetadata
}

// TransferRequest moves units between two wallets.
type TransferRequest struct {
	From     string
	To       string
	Amount   decimal.Decimal
	Metadata *domain.TransactionMetadata
}

// BurnRequest redeems units from a wallet.
type BurnRequest struct {
	From     string
	Amount   decimal.Decimal
	Metadata *domain.TransactionMetadata
}

// AuthService defines operator authentication.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// ProvisioningService registers wallets decided by the external KYC process.
type ProvisioningService interface {
	RegisterWallet(ctx context.Context, req RegisterWalletRequest) (*domain.Wallet, error)
}

// RegisterWalletRequest holds a provisioned wallet's identity and tier.
type RegisterWalletRequest struct {
	Address string
	KycTier domain.KycTier
}

// ReportingService produces and archives regulatory reports.
type ReportingService interface {
	GenerateSuspiciousActivityReport(ctx context.Context) (*domain.RegulatoryReport, error)
	GenerateReserveAuditReport(ctx context.Context) (*domain.RegulatoryReport, error)
	ListReports(ctx context.Context, kind *domain.ReportKind, limit int) ([]domain.RegulatoryReport, error)
}

// AuditService records operator actions asynchronously.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
