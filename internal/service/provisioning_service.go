package service

import (
	"context"
	"strings"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type provisioningService struct {
	ledger ports.LedgerService
	repo   ports.WalletRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewProvisioningService creates a wallet provisioning service.
// If repo is nil, wallets only live in the running engine.
func NewProvisioningService(ledger ports.LedgerService, repo ports.WalletRepository, log zerolog.Logger) ports.ProvisioningService {
	return &provisioningService{ledger: ledger, repo: repo, log: log, now: time.Now}
}

// RegisterWallet writes the wallet to the directory, then opens it in the ledger
// with a zero balance. Both copies share one creation time. Units only enter a wallet through mint or transfer.
func (s *provisioningService) RegisterWallet(ctx context.Context, req ports.RegisterWalletRequest) (*domain.Wallet, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, apperror.Validation("address is required")
	}
	if !req.KycTier.IsValid() {
		return nil, apperror.Validation("invalid kyc tier")
	}

	if _, err := s.ledger.GetWallet(ctx, address); err == nil {
		return nil, apperror.ErrWalletExists(address)
	} else if !apperror.HasCode(err, apperror.CodeWalletNotFound) {
		return nil, err
	}

	wallet := domain.Wallet{
		Address:   address,
		Balance:   decimal.Zero,
		KycTier:   req.KycTier,
		CreatedAt: s.now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, &wallet); err != nil {
			if apperror.HasCode(err, apperror.CodeWalletExists) {
				return nil, err
			}
			return nil, apperror.ErrDatabaseError(err)
		}
	}

	if err := s.ledger.RegisterWallet(ctx, wallet); err != nil {
		return nil, err
	}

	s.log.Info().Str("address", address).Str("kyc_tier", string(req.KycTier)).Msg("wallet provisioned")
	return s.ledger.GetWallet(ctx, address)
}
