package handler

import (
	"stablecoin-ledger/internal/adapter/http/middleware"
	redisStore "stablecoin-ledger/internal/adapter/storage/redis"
	"stablecoin-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxRequestBody caps JSON payloads at 1 MB.
const maxRequestBody = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	LedgerSvc       ports.LedgerService
	ProvisioningSvc ports.ProvisioningService
	ReportingSvc    ports.ReportingService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AuditSvc        ports.AuditService // nil = audit logging disabled
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxRequestBody))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: PostgreSQL, Redis and the ledger's log chain)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/login", rl("auth_login"), authHandler.Login)

	// --- JWT-authenticated routes (operators) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ProvisioningSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("ledger_write"), walletHandler.Register)
		wallets.GET("/:address", rl("ledger_read"), walletHandler.Get)
		wallets.GET("/:address/transactions", rl("ledger_read"), walletHandler.ListTransactions)
	}

	txHandler := NewTransactionHandler(deps.LedgerSvc)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("/mint", rl("ledger_write"), txHandler.Mint)
		transactions.POST("/transfer", rl("ledger_write"), txHandler.Transfer)
		transactions.POST("/burn", rl("ledger_write"), txHandler.Burn)
		transactions.GET("/:id", rl("ledger_read"), txHandler.Get)
	}

	reserveHandler := NewReserveHandler(deps.LedgerSvc, deps.ReportingSvc)
	reserve := v1.Group("/reserve", jwtAuth)
	{
		reserve.GET("", rl("ledger_read"), reserveHandler.Get)
		reserve.POST("/audit", rl("reports"), reserveHandler.Audit)
	}

	complianceHandler := NewComplianceHandler(deps.LedgerSvc, deps.ReportingSvc)
	compliance := v1.Group("/compliance", jwtAuth)
	{
		compliance.GET("/alerts", rl("compliance"), complianceHandler.Alerts)
		compliance.POST("/freeze/:address", rl("compliance"), complianceHandler.Freeze)
		compliance.POST("/unfreeze/:address", rl("compliance"), complianceHandler.Unfreeze)
		compliance.POST("/reports", rl("reports"), complianceHandler.GenerateReport)
		compliance.GET("/reports", rl("compliance"), complianceHandler.ListReports)
	}

	return r
}
