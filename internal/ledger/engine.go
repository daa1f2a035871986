package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"
	"stablecoin-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// Config holds the engine-wide limits.
type Config struct {
	MaxTransactionAmount  decimal.Decimal
	MinKycTier            domain.KycTier
	ReserveRequirement    decimal.Decimal
	RegulatoryAuthorities []string
	Compliance            MonitorConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTransactionAmount:  decimal.NewFromInt(1_000_000),
		MinKycTier:            domain.KycTierVerified,
		ReserveRequirement:    decimal.NewFromInt(1),
		RegulatoryAuthorities: []string{"HKMA", "SFC"},
		Compliance: MonitorConfig{
			ReportingThreshold: decimal.NewFromInt(80_000),
			HistoryWindow:      24 * time.Hour,
			HistoryCap:         500,
			StructuringCap:     decimal.NewFromInt(500_000),
			StructuringPolicy:  StructuringFlag,
			RapidWindow:        5 * time.Minute,
			RapidCount:         10,
		},
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithJournal mirrors every recorded transaction to a durable journal.
// Journal failures are logged and never fail the operation.
func WithJournal(repo ports.TransactionRepository) Option {
	return func(e *Engine) { e.journal = repo }
}

// WithIdempotencyCache adds a second idempotency layer that survives restarts.
func WithIdempotencyCache(cache ports.IdempotencyCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithAssetPricer replaces the identity pricing of backing assets.
func WithAssetPricer(p ports.AssetPricer) Option {
	return func(e *Engine) { e.pricer = p }
}

// WithClock overrides time.Now for record timestamps and screening windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine sequences validation, screening, mutation and logging for every
// operation. All mutations serialize on mu; reads share it, so no reader
// sees a transfer half applied.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	wallets *WalletLedger
	reserve *ReserveAccount
	monitor *ComplianceMonitor
	txlog   *TransactionLog

	journal ports.TransactionRepository
	cache   ports.IdempotencyCache
	pricer  ports.AssetPricer
	now     func() time.Time
	log     zerolog.Logger
}

// NewEngine wires the four components.
func NewEngine(cfg Config, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
		log: log,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.wallets = NewWalletLedger()
	e.reserve = NewReserveAccount(cfg.ReserveRequirement, e.pricer)
	e.monitor = NewComplianceMonitor(cfg.Compliance, e.now, logger.Component(log, "compliance"))
	e.txlog = NewTransactionLog()
	return e
}

var _ ports.LedgerService = (*Engine)(nil)

// Mint issues units to a wallet against deposited backing.
func (e *Engine) Mint(ctx context.Context, req ports.MintRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	return e.execute(ctx, domain.TransactionKindMint, req.Metadata, func() (*domain.Transaction, error) {
		if _, err := e.gate(req.To); err != nil {
			return nil, err
		}

		// Reserve first: a backing shortfall must leave the wallet untouched.
		if err := e.reserve.MintBacking(ctx, req.Backing, req.Amount); err != nil {
			return nil, err
		}
		if err := e.wallets.Credit(req.To, req.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit after mint backing: %w", err))
		}

		tx := e.newTransaction(domain.ReserveMintAddress, req.To, req.Amount, domain.TransactionKindMint, req.Metadata)
		tx.Status = domain.TransactionStatusCompleted
		return tx, nil
	})
}

// Transfer moves units between two wallets after compliance screening.
// A rejected attempt is still recorded, with status FROZEN.
func (e *Engine) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Amount.GreaterThan(e.cfg.MaxTransactionAmount) {
		return nil, apperror.ErrAmountExceedsLimit()
	}
	if req.From == req.To {
		return nil, apperror.Validation("source and destination wallets must differ")
	}

	return e.execute(ctx, domain.TransactionKindTransfer, req.Metadata, func() (*domain.Transaction, error) {
		wallets, err := e.gate(req.From, req.To)
		if err != nil {
			return nil, err
		}
		if wallets[0].Balance.LessThan(req.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}

		tx := e.newTransaction(req.From, req.To, req.Amount, domain.TransactionKindTransfer, req.Metadata)
		decision := e.monitor.Monitor(*tx)
		tx.Screening = &decision

		if decision.Blocks() {
			tx.Status = domain.TransactionStatusFrozen
			e.log.Warn().
				Str("tx_id", tx.ID.String()).
				Str("from", req.From).
				Str("to", req.To).
				Str("reason", decision.Reason).
				Msg("transfer rejected by compliance screening")
			return tx, apperror.ErrComplianceCheckFailed(decision.Reason, tx.ID.String())
		}

		if err := e.wallets.Debit(req.From, req.Amount); err != nil {
			return nil, err
		}
		if err := e.wallets.Credit(req.To, req.Amount); err != nil {
			_ = e.wallets.Credit(req.From, req.Amount)
			return nil, apperror.InternalError(fmt.Errorf("credit destination: %w", err))
		}

		tx.Status = domain.TransactionStatusCompleted
		return tx, nil
	})
}

// Burn redeems units from a wallet and retires them from the reserve.
func (e *Engine) Burn(ctx context.Context, req ports.BurnRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	return e.execute(ctx, domain.TransactionKindBurn, req.Metadata, func() (*domain.Transaction, error) {
		if _, err := e.gate(req.From); err != nil {
			return nil, err
		}
		if err := e.reserve.CanRelease(req.Amount); err != nil {
			return nil, err
		}
		if err := e.wallets.Debit(req.From, req.Amount); err != nil {
			return nil, err
		}
		if err := e.reserve.ReleaseBacking(ctx, req.Amount); err != nil {
			_ = e.wallets.Credit(req.From, req.Amount)
			return nil, err
		}

		tx := e.newTransaction(req.From, domain.ReserveBurnAddress, req.Amount, domain.TransactionKindBurn, req.Metadata)
		tx.Status = domain.TransactionStatusCompleted
		return tx, nil
	})
}

// Freeze places a regulatory hold on a wallet and records a FREEZE entry
// carrying the balance held at that moment.
func (e *Engine) Freeze(ctx context.Context, address string) (*domain.Transaction, error) {
	return e.setFrozen(ctx, address, true)
}

// Unfreeze lifts a regulatory hold.
func (e *Engine) Unfreeze(ctx context.Context, address string) (*domain.Transaction, error) {
	return e.setFrozen(ctx, address, false)
}

func (e *Engine) setFrozen(ctx context.Context, address string, frozen bool) (*domain.Transaction, error) {
	kind := domain.TransactionKindUnfreeze
	if frozen {
		kind = domain.TransactionKindFreeze
	}

	return e.execute(ctx, kind, nil, func() (*domain.Transaction, error) {
		w, ok := e.wallets.Get(address)
		if !ok {
			return nil, apperror.ErrWalletNotFound(address)
		}
		if w.Frozen == frozen {
			return nil, apperror.Validation(fmt.Sprintf("wallet %s is already %s", address, frozenState(frozen)))
		}
		if err := e.wallets.SetFrozen(address, frozen); err != nil {
			return nil, err
		}

		tx := e.newTransaction(address, address, w.Balance, kind, nil)
		tx.Status = domain.TransactionStatusCompleted
		return tx, nil
	})
}

func frozenState(frozen bool) string {
	if frozen {
		return "frozen"
	}
	return "unfrozen"
}

// RegisterWallet admits a wallet provisioned by the KYC process.
func (e *Engine) RegisterWallet(_ context.Context, w domain.Wallet) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = e.now()
	}
	if err := e.wallets.Register(w); err != nil {
		return err
	}
	e.log.Info().Str("address", w.Address).Str("kyc_tier", string(w.KycTier)).Msg("wallet registered")
	return nil
}

// GetWallet returns a snapshot of the wallet.
func (e *Engine) GetWallet(_ context.Context, address string) (*domain.Wallet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	w, ok := e.wallets.Get(address)
	if !ok {
		return nil, apperror.ErrWalletNotFound(address)
	}
	return &w, nil
}

// GetReserve returns a snapshot of the reserve.
func (e *Engine) GetReserve(_ context.Context) domain.Reserve {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reserve.Snapshot()
}

// GetTransaction looks the id up in memory, then in the journal if one is wired.
func (e *Engine) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	e.mu.RLock()
	tx, ok := e.txlog.Get(id)
	e.mu.RUnlock()
	if ok {
		return &tx, nil
	}

	if e.journal != nil {
		stored, err := e.journal.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("journal lookup: %w", err))
		}
		if stored != nil {
			return stored, nil
		}
	}
	return nil, apperror.ErrTransactionNotFound(id.String())
}

// ListTransactions returns the newest records touching address.
func (e *Engine) ListTransactions(_ context.Context, address string, limit int) ([]domain.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, ok := e.wallets.Get(address); !ok {
		return nil, apperror.ErrWalletNotFound(address)
	}
	return e.txlog.ListByAddress(address, limit), nil
}

// PendingAlerts returns queued suspicious-activity records without draining them.
func (e *Engine) PendingAlerts(_ context.Context) []domain.SuspiciousActivity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.monitor.Pending()
}

// DrainReport returns a SUSPICIOUS_ACTIVITY report for the configured
// authorities, or nil when nothing is queued.
func (e *Engine) DrainReport(_ context.Context) (*domain.RegulatoryReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.monitor.DrainReport(e.cfg.RegulatoryAuthorities)
	if err != nil {
		return nil, err
	}
	if report != nil {
		e.log.Info().Str("report_id", report.ID.String()).Msg("suspicious activity report drained")
	}
	return report, nil
}

type reserveAuditPayload struct {
	Reserve           domain.Reserve  `json:"reserve"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	WalletCount       int             `json:"wallet_count"`
	TransactionCount  int             `json:"transaction_count"`
	LogHead           string          `json:"log_head"`
	LogIntact         bool            `json:"log_intact"`
	LogError          string          `json:"log_error,omitempty"`
}

// AuditReserve reprices the reserve, stamps last_audit and returns a
// RESERVE_AUDIT report that also attests the transaction log chain.
func (e *Engine) AuditReserve(ctx context.Context) (*domain.RegulatoryReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	snapshot, err := e.reserve.Audit(ctx, now)
	if err != nil {
		return nil, err
	}

	payload := reserveAuditPayload{
		Reserve:           snapshot,
		CirculatingSupply: e.wallets.Total(),
		WalletCount:       e.wallets.Len(),
		TransactionCount:  e.txlog.Len(),
		LogHead:           e.txlog.Head(),
		LogIntact:         true,
	}
	if err := e.txlog.Verify(); err != nil {
		payload.LogIntact = false
		payload.LogError = err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.ErrSerialization(err)
	}

	submittedTo := make([]string, len(e.cfg.RegulatoryAuthorities))
	copy(submittedTo, e.cfg.RegulatoryAuthorities)

	e.log.Info().
		Str("issued", snapshot.IssuedBalance.String()).
		Str("ratio", snapshot.ReserveRatio.String()).
		Bool("log_intact", payload.LogIntact).
		Msg("reserve audited")

	return &domain.RegulatoryReport{
		ID:          uuid.New(),
		Kind:        domain.ReportReserveAudit,
		Data:        data,
		GeneratedAt: now,
		SubmittedTo: submittedTo,
	}, nil
}

// Name implements ports.HealthChecker.
func (e *Engine) Name() string { return "ledger" }

// Ping reports a broken transaction log chain as unhealthy.
func (e *Engine) Ping(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.txlog.Verify()
}

// execute runs body under the write lock and records whatever transaction
// it produced. body may return both a transaction and an error: the record
// is kept (FROZEN audit entries) and the error is still reported.
func (e *Engine) execute(
	ctx context.Context,
	kind domain.TransactionKind,
	md *domain.TransactionMetadata,
	body func() (*domain.Transaction, error),
) (*domain.Transaction, error) {
	e.mu.Lock()

	if prior, ok := e.replay(ctx, kind, md); ok {
		e.mu.Unlock()
		e.log.Info().Str("tx_id", prior.ID.String()).Str("kind", string(kind)).Msg("idempotent replay")
		return replayed(prior)
	}

	tx, opErr := body()

	var (
		stored domain.Transaction
		fresh  bool
	)
	if tx != nil {
		stored, fresh = e.txlog.Append(*tx)
	}
	e.mu.Unlock()

	if fresh {
		e.publish(ctx, stored)
	}
	if opErr != nil {
		return nil, opErr
	}

	e.log.Info().
		Str("tx_id", stored.ID.String()).
		Str("kind", string(stored.Kind)).
		Str("from", stored.FromAddress).
		Str("to", stored.ToAddress).
		Str("amount", stored.Amount.String()).
		Msg("transaction recorded")

	return &stored, nil
}

// replay finds an earlier result for the caller's idempotency key, first in
// the in-memory log, then in the cache.
func (e *Engine) replay(ctx context.Context, kind domain.TransactionKind, md *domain.TransactionMetadata) (*domain.Transaction, bool) {
	if md == nil || md.IdempotencyKey == nil || *md.IdempotencyKey == "" {
		return nil, false
	}
	key := domain.BuildIdempotencyKey(kind, *md.IdempotencyKey)

	if tx, ok := e.txlog.FindByKey(key); ok {
		return &tx, true
	}

	if e.cache == nil {
		return nil, false
	}
	cached, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("idempotency cache lookup failed, executing")
		return nil, false
	}
	if cached == nil {
		return nil, false
	}
	var tx domain.Transaction
	if err := json.Unmarshal(cached, &tx); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable idempotency cache entry")
		return nil, false
	}
	return &tx, true
}

func replayed(tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.Status == domain.TransactionStatusFrozen {
		reason := ""
		if tx.Screening != nil {
			reason = tx.Screening.Reason
		}
		return nil, apperror.ErrComplianceCheckFailed(reason, tx.ID.String())
	}
	return tx, nil
}

// publish forwards a freshly recorded transaction to the journal and the
// idempotency cache. Both are best effort.
func (e *Engine) publish(ctx context.Context, tx domain.Transaction) {
	if e.journal != nil {
		if err := e.journal.Create(ctx, &tx); err != nil {
			e.log.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to journal transaction")
		}
	}

	key := tx.IdempotencyKey()
	if key == "" || e.cache == nil {
		return
	}
	data, err := json.Marshal(tx)
	if err != nil {
		e.log.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to marshal transaction for cache")
		return
	}
	if err := e.cache.Set(ctx, domain.BuildIdempotencyKey(tx.Kind, key), data, idempotencyTTL); err != nil {
		e.log.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to cache idempotency result")
	}
}

// gate loads the wallets and applies existence, freeze and KYC checks in
// that order across all of them, before any balance is looked at.
func (e *Engine) gate(addresses ...string) ([]domain.Wallet, error) {
	wallets := make([]domain.Wallet, 0, len(addresses))
	for _, a := range addresses {
		w, ok := e.wallets.Get(a)
		if !ok {
			return nil, apperror.ErrWalletNotFound(a)
		}
		wallets = append(wallets, w)
	}
	for _, w := range wallets {
		if w.Frozen {
			return nil, apperror.ErrWalletFrozen(w.Address)
		}
	}
	for _, w := range wallets {
		// Frozen wallets were rejected above, so only the tier can fail here.
		if !w.CanTransact(e.cfg.MinKycTier) {
			return nil, apperror.ErrInsufficientKyc(w.Address)
		}
	}
	return wallets, nil
}

func (e *Engine) newTransaction(from, to string, amount decimal.Decimal, kind domain.TransactionKind, md *domain.TransactionMetadata) *domain.Transaction {
	var meta *domain.TransactionMetadata
	if md != nil {
		m := *md
		meta = &m
	}
	return &domain.Transaction{
		ID:          uuid.New(),
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
		Kind:        kind,
		Status:      domain.TransactionStatusPending,
		CreatedAt:   e.now(),
		Metadata:    meta,
	}
}
