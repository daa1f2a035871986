package handler

import (
	"strings"

	"stablecoin-ledger/internal/adapter/http/dto"
	"stablecoin-ledger/internal/adapter/http/middleware"
	"stablecoin-ledger/internal/core/ports"
	"stablecoin-ledger/pkg/apperror"
	"stablecoin-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges operator credentials for a bearer token.
type AuthHandler struct {
	authSvc ports.AuthService
}

func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /api/v1/auth/login.
// The password is passed through untouched; only the username is trimmed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	operator := strings.TrimSpace(req.Username)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), operator, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The audit trail runs after the handler and reads the operator from here.
	c.Set(middleware.CtxOperator, operator)

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}
