package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records successful write operations.
// Actions are resolved from the matched route template, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		action, resourceType := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(CtxRequestID),
			"token_id":   c.GetString(CtxTokenID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Operator:     OperatorFrom(c),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("address"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(route, method string) (domain.AuditAction, string) {
	if method != http.MethodPost {
		return "", ""
	}
	switch route {
	case "/api/v1/auth/login":
		return domain.AuditActionLogin, "session"
	case "/api/v1/wallets":
		return domain.AuditActionRegisterWallet, "wallet"
	case "/api/v1/transactions/mint":
		return domain.AuditActionMint, "transaction"
	case "/api/v1/transactions/transfer":
		return domain.AuditActionTransfer, "transaction"
	case "/api/v1/transactions/burn":
		return domain.AuditActionBurn, "transaction"
	case "/api/v1/compliance/freeze/:address":
		return domain.AuditActionFreeze, "wallet"
	case "/api/v1/compliance/unfreeze/:address":
		return domain.AuditActionUnfreeze, "wallet"
	case "/api/v1/reserve/audit":
		return domain.AuditActionReserveAudit, "reserve"
	case "/api/v1/compliance/reports":
		return domain.AuditActionReport, "report"
	}
	return "", ""
}
