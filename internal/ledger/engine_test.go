package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/internal/core/ports/mocks"
	"stablecoin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	corp = "HK-CORP-001"
	user = "HK-USER-001"
)

func newTestEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(cfg, zerolog.Nop(), opts...)
	ctx := context.Background()
	require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: corp, KycTier: domain.KycTierEnhancedVerified}))
	require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: user, KycTier: domain.KycTierVerified}))
	return e
}

func mintCash(t *testing.T, e *Engine, to string, amount int64) *domain.Transaction {
	t.Helper()
	tx, err := e.Mint(context.Background(), ports.MintRequest{
		To:      to,
		Amount:  dec(amount),
		Backing: map[string]decimal.Decimal{"cash": dec(amount)},
	})
	require.NoError(t, err)
	return tx
}

func balanceOf(t *testing.T, e *Engine, address string) decimal.Decimal {
	t.Helper()
	w, err := e.GetWallet(context.Background(), address)
	require.NoError(t, err)
	return w.Balance
}

func idemKey(k string) *domain.TransactionMetadata {
	return &domain.TransactionMetadata{IdempotencyKey: &k}
}

func TestEngine_MintTransferBurnScenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())

	mint := mintCash(t, e, corp, 1_000_000)
	assert.Equal(t, domain.TransactionKindMint, mint.Kind)
	assert.Equal(t, domain.TransactionStatusCompleted, mint.Status)
	assert.Equal(t, domain.ReserveMintAddress, mint.FromAddress)
	assertAmount(t, 1, e.GetReserve(ctx).ReserveRatio)

	transfer, err := e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(50_000)})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, transfer.Status)
	require.NotNil(t, transfer.Screening)
	assert.Equal(t, domain.DecisionAllow, transfer.Screening.Outcome)
	assertAmount(t, 950_000, balanceOf(t, e, corp))
	assertAmount(t, 50_000, balanceOf(t, e, user))

	burn, err := e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(50_000)})
	require.NoError(t, err)
	assert.Equal(t, domain.ReserveBurnAddress, burn.ToAddress)
	assertAmount(t, 900_000, balanceOf(t, e, corp))

	reserve := e.GetReserve(ctx)
	assertAmount(t, 950_000, reserve.IssuedBalance)
	assert.True(t, reserve.ReserveRatio.GreaterThanOrEqual(dec(1)))

	for _, id := range []uuid.UUID{mint.ID, transfer.ID, burn.ID} {
		got, err := e.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	}
}

func TestEngine_Mint_UnderBackedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())

	_, err := e.Mint(ctx, ports.MintRequest{
		To:      corp,
		Amount:  dec(1_000_000),
		Backing: map[string]decimal.Decimal{"cash": dec(900_000)},
	})
	assertAppError(t, err, apperror.CodeInsufficientReserveBacking)

	assert.True(t, balanceOf(t, e, corp).IsZero())
	reserve := e.GetReserve(ctx)
	assert.True(t, reserve.IssuedBalance.IsZero())
	assert.Empty(t, reserve.BackingAssets)
	assertAmount(t, 1, reserve.ReserveRatio)
}

func TestEngine_Mint_GatesDestinationBeforeReserve(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: "pending", KycTier: domain.KycTierPending}))

	tests := []struct {
		name string
		to   string
		code string
	}{
		{"missing wallet", "ghost", apperror.CodeWalletNotFound},
		{"insufficient kyc", "pending", apperror.CodeInsufficientKyc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Mint(ctx, ports.MintRequest{
				To:      tt.to,
				Amount:  dec(10),
				Backing: map[string]decimal.Decimal{"cash": dec(10)},
			})
			assertAppError(t, err, tt.code)
			assert.True(t, e.GetReserve(ctx).IssuedBalance.IsZero())
		})
	}

	_, err := e.Mint(ctx, ports.MintRequest{To: corp, Amount: dec(0)})
	assertAppError(t, err, apperror.CodeInvalidAmount)
}

func TestEngine_Transfer_ValidationOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(t *testing.T, e *Engine)
		from   string
		to     string
		amount decimal.Decimal
		code   string
	}{
		{"zero amount", nil, corp, user, dec(0), apperror.CodeInvalidAmount},
		{"negative amount", nil, corp, user, dec(-5), apperror.CodeInvalidAmount},
		{"over the limit", nil, corp, user, dec(1_000_001), apperror.CodeAmountExceedsLimit},
		{"missing source", nil, "ghost", user, dec(10), apperror.CodeWalletNotFound},
		{"missing destination", nil, corp, "ghost", dec(10), apperror.CodeWalletNotFound},
		{"same wallet", nil, corp, corp, dec(10), apperror.CodeValidation},
		{
			name: "frozen source with funds",
			setup: func(t *testing.T, e *Engine) {
				_, err := e.Freeze(ctx, corp)
				require.NoError(t, err)
			},
			from: corp, to: user, amount: dec(10), code: apperror.CodeWalletFrozen,
		},
		{
			name: "frozen destination",
			setup: func(t *testing.T, e *Engine) {
				_, err := e.Freeze(ctx, user)
				require.NoError(t, err)
			},
			from: corp, to: user, amount: dec(10), code: apperror.CodeWalletFrozen,
		},
		{
			name: "frozen checked before balance",
			setup: func(t *testing.T, e *Engine) {
				_, err := e.Freeze(ctx, corp)
				require.NoError(t, err)
			},
			from: corp, to: user, amount: dec(999_999), code: apperror.CodeWalletFrozen,
		},
		{
			name: "kyc checked before balance",
			setup: func(t *testing.T, e *Engine) {
				require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: "pending", KycTier: domain.KycTierPending}))
			},
			from: "pending", to: user, amount: dec(10), code: apperror.CodeInsufficientKyc,
		},
		{
			name: "rejected tier",
			setup: func(t *testing.T, e *Engine) {
				require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: "rejected", KycTier: domain.KycTierRejected}))
			},
			from: corp, to: "rejected", amount: dec(10), code: apperror.CodeInsufficientKyc,
		},
		{"insufficient balance", nil, corp, user, dec(1_000), apperror.CodeInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, DefaultConfig())
			mintCash(t, e, corp, 500)
			if tt.setup != nil {
				tt.setup(t, e)
			}
			logged := e.txlog.Len()

			_, err := e.Transfer(ctx, ports.TransferRequest{From: tt.from, To: tt.to, Amount: tt.amount})
			assertAppError(t, err, tt.code)

			assertAmount(t, 500, balanceOf(t, e, corp))
			assertAmount(t, 0, balanceOf(t, e, user))
			assert.Equal(t, logged, e.txlog.Len(), "validation failures are not recorded")
		})
	}
}

func TestEngine_Transfer_ComplianceRejectRecordsFrozenTransaction(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Compliance.HighRiskAddresses = []string{user}
	e := newTestEngine(t, cfg)
	mintCash(t, e, corp, 1_000)

	tx, err := e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(100)})
	assert.Nil(t, tx)
	assertAppError(t, err, apperror.CodeComplianceCheckFailed)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	id, parseErr := uuid.Parse(appErr.Reference)
	require.NoError(t, parseErr)

	recorded, err := e.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFrozen, recorded.Status)
	require.NotNil(t, recorded.Screening)
	assert.Equal(t, domain.DecisionReject, recorded.Screening.Outcome)
	assert.Equal(t, domain.ActivityHighRiskCounterparty, recorded.Screening.Kind)

	assertAmount(t, 1_000, balanceOf(t, e, corp))
	assertAmount(t, 0, balanceOf(t, e, user))
	assert.Len(t, e.PendingAlerts(ctx), 1)
}

func TestEngine_Transfer_FlaggedStillCompletes(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	mintCash(t, e, corp, 200_000)

	tx, err := e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(90_000)})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, domain.DecisionFlag, tx.Screening.Outcome)
	assertAmount(t, 90_000, balanceOf(t, e, user))

	alerts := e.PendingAlerts(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, tx.ID, alerts[0].TransactionID)
}

func TestEngine_Transfer_StructuringRejectPolicy(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Compliance.StructuringCap = dec(100_000)
	cfg.Compliance.StructuringPolicy = StructuringReject
	e := newTestEngine(t, cfg)
	mintCash(t, e, corp, 500_000)

	for i := 0; i < 2; i++ {
		_, err := e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(50_000)})
		require.NoError(t, err)
	}

	_, err := e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(10_000)})
	assertAppError(t, err, apperror.CodeComplianceCheckFailed)
	assertAmount(t, 100_000, balanceOf(t, e, user))
}

func TestEngine_Burn(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	mintCash(t, e, corp, 100)

	_, err := e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(101)})
	assertAppError(t, err, apperror.CodeInsufficientReserveBacking)

	_, err = e.Burn(ctx, ports.BurnRequest{From: "ghost", Amount: dec(1)})
	assertAppError(t, err, apperror.CodeWalletNotFound)

	_, err = e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(0)})
	assertAppError(t, err, apperror.CodeInvalidAmount)

	assertAmount(t, 100, balanceOf(t, e, corp))
	assertAmount(t, 100, e.GetReserve(ctx).IssuedBalance)
}

func TestEngine_Burn_InsufficientBalanceLeavesReserve(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	mintCash(t, e, corp, 100)
	mintCash(t, e, user, 10)

	_, err := e.Burn(ctx, ports.BurnRequest{From: user, Amount: dec(50)})
	assertAppError(t, err, apperror.CodeInsufficientBalance)

	assertAmount(t, 110, e.GetReserve(ctx).IssuedBalance)
	assertAmount(t, 10, balanceOf(t, e, user))
}

func TestEngine_FreezeUnfreeze(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	mintCash(t, e, corp, 100)

	freeze, err := e.Freeze(ctx, corp)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindFreeze, freeze.Kind)
	assertAmount(t, 100, freeze.Amount)

	_, err = e.Freeze(ctx, corp)
	assertAppError(t, err, apperror.CodeValidation)

	_, err = e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(1)})
	assertAppError(t, err, apperror.CodeWalletFrozen)

	unfreeze, err := e.Unfreeze(ctx, corp)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindUnfreeze, unfreeze.Kind)

	_, err = e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(10)})
	require.NoError(t, err)

	_, err = e.Freeze(ctx, "ghost")
	assertAppError(t, err, apperror.CodeWalletNotFound)

	history, err := e.ListTransactions(ctx, corp, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.TransactionKindTransfer, history[0].Kind)
	assert.Equal(t, domain.TransactionKindUnfreeze, history[1].Kind)
	assert.Equal(t, domain.TransactionKindFreeze, history[2].Kind)
	assert.Equal(t, domain.TransactionKindMint, history[3].Kind)
}

func TestEngine_IdempotentRetryReturnsPriorResult(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())

	req := ports.MintRequest{
		To:       corp,
		Amount:   dec(500),
		Backing:  map[string]decimal.Decimal{"cash": dec(500)},
		Metadata: idemKey("mint-001"),
	}
	first, err := e.Mint(ctx, req)
	require.NoError(t, err)
	second, err := e.Mint(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assertAmount(t, 500, balanceOf(t, e, corp))
	assertAmount(t, 500, e.GetReserve(ctx).IssuedBalance)

	// Same key on a different operation kind is independent.
	_, err = e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(100), Metadata: idemKey("mint-001")})
	require.NoError(t, err)
	assertAmount(t, 400, balanceOf(t, e, corp))
}

func TestEngine_IdempotentRetryReplaysComplianceFailure(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Compliance.HighRiskAddresses = []string{user}
	e := newTestEngine(t, cfg)
	mintCash(t, e, corp, 1_000)

	req := ports.TransferRequest{From: corp, To: user, Amount: dec(10), Metadata: idemKey("t-1")}
	_, first := e.Transfer(ctx, req)
	_, second := e.Transfer(ctx, req)

	assertAppError(t, first, apperror.CodeComplianceCheckFailed)
	assertAppError(t, second, apperror.CodeComplianceCheckFailed)

	var a, b *apperror.AppError
	require.True(t, errors.As(first, &a))
	require.True(t, errors.As(second, &b))
	assert.Equal(t, a.Reference, b.Reference)
	assert.Len(t, e.PendingAlerts(ctx), 1, "retry is not screened again")
}

func TestEngine_IdempotencyCacheLayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	ctx := context.Background()

	e := newTestEngine(t, DefaultConfig(), WithIdempotencyCache(cache))

	prior := domain.Transaction{
		ID:          uuid.New(),
		FromAddress: domain.ReserveMintAddress,
		ToAddress:   corp,
		Amount:      dec(700),
		Kind:        domain.TransactionKindMint,
		Status:      domain.TransactionStatusCompleted,
	}
	cached, err := json.Marshal(prior)
	require.NoError(t, err)

	cache.EXPECT().
		Get(gomock.Any(), domain.BuildIdempotencyKey(domain.TransactionKindMint, "restart-1")).
		Return(cached, nil)

	tx, err := e.Mint(ctx, ports.MintRequest{
		To:       corp,
		Amount:   dec(700),
		Backing:  map[string]decimal.Decimal{"cash": dec(700)},
		Metadata: idemKey("restart-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, prior.ID, tx.ID)
	assert.True(t, balanceOf(t, e, corp).IsZero(), "replayed result must not execute again")
}

func TestEngine_IdempotencyCacheMissCachesResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	ctx := context.Background()
	key := domain.BuildIdempotencyKey(domain.TransactionKindMint, "fresh-1")

	e := newTestEngine(t, DefaultConfig(), WithIdempotencyCache(cache))

	cache.EXPECT().Get(gomock.Any(), key).Return(nil, errors.New("redis down"))
	cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), idempotencyTTL).Return(errors.New("redis down"))

	tx, err := e.Mint(ctx, ports.MintRequest{
		To:       corp,
		Amount:   dec(5),
		Backing:  map[string]decimal.Decimal{"cash": dec(5)},
		Metadata: idemKey("fresh-1"),
	})
	require.NoError(t, err, "cache failures never fail the operation")
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
}

func TestEngine_JournalIsBestEffort(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockTransactionRepository(ctrl)

	e := newTestEngine(t, DefaultConfig(), WithJournal(journal))

	journal.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
			assert.Equal(t, domain.TransactionKindMint, tx.Kind)
			return errors.New("connection refused")
		})

	tx := mintCash(t, e, corp, 10)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
}

func TestEngine_GetTransactionFallsBackToJournal(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockTransactionRepository(ctrl)
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig(), WithJournal(journal))

	archived := &domain.Transaction{ID: uuid.New(), Kind: domain.TransactionKindTransfer}
	missing := uuid.New()
	journal.EXPECT().GetByID(gomock.Any(), archived.ID).Return(archived, nil)
	journal.EXPECT().GetByID(gomock.Any(), missing).Return(nil, nil)

	got, err := e.GetTransaction(ctx, archived.ID)
	require.NoError(t, err)
	assert.Equal(t, archived.ID, got.ID)

	_, err = e.GetTransaction(ctx, missing)
	assertAppError(t, err, apperror.CodeTransactionNotFound)
}

func TestEngine_Lookups(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())

	_, err := e.GetWallet(ctx, "ghost")
	assertAppError(t, err, apperror.CodeWalletNotFound)

	_, err = e.GetTransaction(ctx, uuid.New())
	assertAppError(t, err, apperror.CodeTransactionNotFound)

	_, err = e.ListTransactions(ctx, "ghost", 10)
	assertAppError(t, err, apperror.CodeWalletNotFound)

	err = e.RegisterWallet(ctx, domain.Wallet{Address: corp, KycTier: domain.KycTierVerified})
	assertAppError(t, err, apperror.CodeWalletExists)

	w, err := e.GetWallet(ctx, corp)
	require.NoError(t, err)
	assert.False(t, w.CreatedAt.IsZero())
}

func TestEngine_DrainReport(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())

	report, err := e.DrainReport(ctx)
	require.NoError(t, err)
	assert.Nil(t, report)

	mintCash(t, e, corp, 100_000)
	_, err = e.Transfer(ctx, ports.TransferRequest{From: corp, To: user, Amount: dec(80_000)})
	require.NoError(t, err)

	report, err = e.DrainReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, domain.ReportSuspiciousActivity, report.Kind)
	assert.Equal(t, []string{"HKMA", "SFC"}, report.SubmittedTo)
	assert.Empty(t, e.PendingAlerts(ctx))

	report, err = e.DrainReport(ctx)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestEngine_AuditReserve(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	e := newTestEngine(t, DefaultConfig(), WithClock(clock.Now))
	mintCash(t, e, corp, 1_000)

	report, err := e.AuditReserve(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportReserveAudit, report.Kind)
	assert.Equal(t, clock.Now(), e.GetReserve(ctx).LastAudit)

	var payload struct {
		CirculatingSupply decimal.Decimal `json:"circulating_supply"`
		WalletCount       int             `json:"wallet_count"`
		TransactionCount  int             `json:"transaction_count"`
		LogIntact         bool            `json:"log_intact"`
	}
	require.NoError(t, json.Unmarshal(report.Data, &payload))
	assertAmount(t, 1_000, payload.CirculatingSupply)
	assert.Equal(t, 2, payload.WalletCount)
	assert.Equal(t, 1, payload.TransactionCount)
	assert.True(t, payload.LogIntact)

	require.NoError(t, e.Ping(ctx))
	assert.Equal(t, "ledger", e.Name())
}

func TestEngine_ConcurrentBurnsExactlyAffordableSucceed(t *testing.T) {
	const (
		attempts = 60
		each     = 100
		funded   = 23
	)
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	mintCash(t, e, corp, funded*each)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Burn(ctx, ports.BurnRequest{From: corp, Amount: dec(each)}); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(funded), succeeded.Load())
	assert.True(t, balanceOf(t, e, corp).IsZero())
	assert.True(t, e.GetReserve(ctx).IssuedBalance.IsZero())
}

func TestEngine_ConcurrentTransfersConserveSupply(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, DefaultConfig())
	require.NoError(t, e.RegisterWallet(ctx, domain.Wallet{Address: "third", KycTier: domain.KycTierVerified}))
	mintCash(t, e, corp, 10_000)
	mintCash(t, e, user, 10_000)

	wallets := []string{corp, user, "third"}
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := wallets[i%3]
			to := wallets[(i+1)%3]
			_, _ = e.Transfer(ctx, ports.TransferRequest{From: from, To: to, Amount: dec(int64(i%7 + 1))})
		}(i)
	}

	// Readers never observe a half-applied transfer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			e.mu.RLock()
			total := e.wallets.Total()
			e.mu.RUnlock()
			assertAmount(t, 20_000, total)
		}
	}()

	wg.Wait()
	<-done

	total := decimal.Zero
	for _, w := range wallets {
		b := balanceOf(t, e, w)
		assert.False(t, b.IsNegative())
		total = total.Add(b)
	}
	assertAmount(t, 20_000, total)
	assertAmount(t, 20_000, e.GetReserve(ctx).IssuedBalance)
}
