package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stablecoin-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if requestID != "" {
		c.Set(requestIDKey, requestID)
	}
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gin.Context, interface{})
		status int
	}{
		{"ok", OK, http.StatusOK},
		{"created", Created, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext("req-wallet-1")
			tt.write(c, map[string]string{"address": "HK-USER-001", "balance": "10.5"})

			assert.Equal(t, tt.status, w.Code)

			var resp SuccessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "req-wallet-1", resp.RequestID)
			assert.NotEmpty(t, resp.Timestamp)

			data, ok := resp.Data.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "10.5", data["balance"])
		})
	}
}

func TestNoContent(t *testing.T) {
	c, w := testContext("req-report-1")
	NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-report-1", w.Header().Get("X-Request-ID"))
	assert.Empty(t, w.Body.Bytes())
}

func TestError_LedgerCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.ErrInsufficientBalance(), http.StatusPaymentRequired, apperror.CodeInsufficientBalance},
		{apperror.ErrWalletFrozen("HK-USER-001"), http.StatusLocked, apperror.CodeWalletFrozen},
		{apperror.ErrInsufficientKyc("HK-USER-001"), http.StatusForbidden, apperror.CodeInsufficientKyc},
		{fmt.Errorf("burn: %w", apperror.ErrInsufficientReserveBacking()), http.StatusUnprocessableEntity, apperror.CodeInsufficientReserveBacking},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, w := testContext("req-1")
			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.ErrorCode)
			assert.Equal(t, "req-1", resp.RequestID)
			assert.Empty(t, resp.Reference)
		})
	}
}

func TestError_ComplianceReference(t *testing.T) {
	c, w := testContext("")
	Error(c, fmt.Errorf("transfer: %w", apperror.ErrComplianceCheckFailed("watch list", "tx-42")))

	assert.Equal(t, http.StatusUnavailableForLegalReasons, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperror.CodeComplianceCheckFailed, resp.ErrorCode)
	assert.Equal(t, "tx-42", resp.Reference)
	assert.NotEmpty(t, resp.RequestID)
}

func TestError_UnknownErrorHidesCause(t *testing.T) {
	c, w := testContext("")
	Error(c, fmt.Errorf("pg: relation ledger_transactions does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperror.CodeInternal, resp.ErrorCode)
	assert.NotContains(t, resp.Message, "ledger_transactions")
}
