package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Ledger error codes. Handlers and tests match on these rather than on messages.
const (
	CodeWalletNotFound             = "LED_001"
	CodeInsufficientBalance        = "LED_002"
	CodeInvalidAmount              = "LED_003"
	CodeAmountExceedsLimit         = "LED_004"
	CodeWalletFrozen               = "LED_005"
	CodeInsufficientKyc            = "LED_006"
	CodeInsufficientReserveBacking = "LED_007"
	CodeComplianceCheckFailed      = "LED_008"
	CodeTransactionNotFound        = "LED_009"
	CodeWalletExists               = "LED_010"
	CodeValidation                 = "VAL_001"
	CodePayloadTooLarge            = "VAL_002"
	CodeInvalidCredentials         = "AUTH_001"
	CodeInvalidToken               = "AUTH_003"
	CodeRateLimitExceeded          = "RATE_001"
	CodeInternal                   = "SYS_001"
	CodeSerialization              = "SYS_004"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	// Reference points at a record created while failing, e.g. the FROZEN
	// audit transaction written on a compliance rejection.
	Reference string `json:"reference,omitempty"`
	Err       error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err carries an AppError with the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ---- Ledger (LED) ----

func ErrWalletNotFound(address string) *AppError {
	return New(CodeWalletNotFound, fmt.Sprintf("Wallet %s not found", address), http.StatusNotFound)
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrAmountExceedsLimit() *AppError {
	return New(CodeAmountExceedsLimit, "Amount exceeds the maximum transaction amount", http.StatusUnprocessableEntity)
}

func ErrWalletFrozen(address string) *AppError {
	return New(CodeWalletFrozen, fmt.Sprintf("Wallet %s is frozen", address), http.StatusLocked)
}

func ErrInsufficientKyc(address string) *AppError {
	return New(CodeInsufficientKyc, fmt.Sprintf("Wallet %s does not meet the required KYC tier", address), http.StatusForbidden)
}

func ErrInsufficientReserveBacking() *AppError {
	return New(CodeInsufficientReserveBacking, "Insufficient reserve backing", http.StatusUnprocessableEntity)
}

// ErrComplianceCheckFailed carries the id of the FROZEN transaction recorded for the attempt.
func ErrComplianceCheckFailed(reason, txID string) *AppError {
	e := New(CodeComplianceCheckFailed, fmt.Sprintf("Compliance check failed: %s", reason), http.StatusUnavailableForLegalReasons)
	e.Reference = txID
	return e
}

func ErrTransactionNotFound(id string) *AppError {
	return New(CodeTransactionNotFound, fmt.Sprintf("Transaction %s not found", id), http.StatusNotFound)
}

func ErrWalletExists(address string) *AppError {
	return New(CodeWalletExists, fmt.Sprintf("Wallet %s already exists", address), http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

func ErrSerialization(err error) *AppError {
	return Wrap(CodeSerialization, "Serialization failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func ErrPayloadTooLarge(limit int64) *AppError {
	return New(CodePayloadTooLarge, fmt.Sprintf("Request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}
