package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stablecoin-ledger/config"
	httpHandler "stablecoin-ledger/internal/adapter/http/handler"
	pgStorage "stablecoin-ledger/internal/adapter/storage/postgres"
	redisStorage "stablecoin-ledger/internal/adapter/storage/redis"
	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/internal/ledger"
	"stablecoin-ledger/internal/service"
	"stablecoin-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("SCL_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Int("operators", len(cfg.Operators)).
		Msg("Starting Stablecoin Ledger")

	if len(cfg.Operators) == 0 {
		log.Warn().Msg("no operators configured, every authenticated route will refuse access")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	applied, err := pgStorage.Migrate(ctx, pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	log.Info().Int("applied", applied).Msg("Schema up to date")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	reportRepo := pgStorage.NewReportRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Ledger engine: journal to PostgreSQL, idempotency results to Redis
	engine := ledger.NewEngine(
		ledgerConfig(cfg),
		logger.Component(log, "ledger"),
		ledger.WithJournal(txRepo),
		ledger.WithIdempotencyCache(redisStorage.NewIdempotencyCache(rdb)),
	)

	seeded, err := seedWallets(ctx, engine, walletRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load wallet directory")
	}
	log.Info().Int("wallets", seeded).Msg("Wallet directory loaded")

	// Initialize services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(operators(cfg), hashSvc, tokenSvc)
	provisioningSvc := service.NewProvisioningService(engine, walletRepo, logger.Component(log, "provisioning"))
	reportingSvc := service.NewReportingService(engine, reportRepo, logger.Component(log, "reporting"))
	auditSvc := service.NewAuditService(auditRepo, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		LedgerSvc:       engine,
		ProvisioningSvc: provisioningSvc,
		ReportingSvc:    reportingSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  redisStorage.NewRateLimitStore(rdb),
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
			engine,
		},
		AuditSvc: auditSvc,
		Logger:   log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// ledgerConfig maps the loaded settings onto the engine's limits.
func ledgerConfig(cfg *config.Config) ledger.Config {
	return ledger.Config{
		MaxTransactionAmount:  cfg.Ledger.MaxTransactionAmount,
		MinKycTier:            cfg.Ledger.MinKycTier,
		ReserveRequirement:    cfg.Ledger.ReserveRequirement,
		RegulatoryAuthorities: cfg.Ledger.RegulatoryAuthorities,
		Compliance: ledger.MonitorConfig{
			ReportingThreshold: cfg.Compliance.ReportingThreshold,
			HistoryWindow:      cfg.Compliance.HistoryWindow,
			HistoryCap:         cfg.Compliance.HistoryCap,
			StructuringCap:     cfg.Compliance.StructuringCap,
			StructuringPolicy:  ledger.StructuringPolicy(cfg.Compliance.StructuringPolicy),
			RapidWindow:        cfg.Compliance.RapidWindow,
			RapidCount:         cfg.Compliance.RapidCount,
			HighRiskAddresses:  cfg.Compliance.HighRiskAddresses,
		},
	}
}

func operators(cfg *config.Config) []domain.Operator {
	out := make([]domain.Operator, 0, len(cfg.Operators))
	for _, op := range cfg.Operators {
		out = append(out, domain.Operator{Username: op.Username, PasswordHash: op.PasswordHash})
	}
	return out
}

// seedWallets opens every provisioned wallet in the engine at a zero balance.
func seedWallets(ctx context.Context, engine ports.LedgerService, repo ports.WalletRepository) (int, error) {
	wallets, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing wallets: %w", err)
	}
	for _, w := range wallets {
		if err := engine.RegisterWallet(ctx, w); err != nil {
			return 0, fmt.Errorf("registering %s: %w", w.Address, err)
		}
	}
	return len(wallets), nil
}
