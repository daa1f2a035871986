// Package response writes the JSON envelopes shared by every ledger endpoint.
package response

import (
	"errors"
	"net/http"
	"time"

	"stablecoin-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey mirrors the key the request-id middleware stores under.
const requestIDKey = "request_id"

// SuccessResponse wraps a payload.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse carries a ledger error code. Reference is set when the
// failure left a record behind, such as the FROZEN transaction of a
// compliance rejection.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope(c, data))
}

// NoContent answers 204 with the request id header only.
func NoContent(c *gin.Context) {
	c.Header("X-Request-ID", requestID(c))
	c.Status(http.StatusNoContent)
}

// Error writes err as an error envelope. Errors that are not an
// *apperror.AppError anywhere in their chain are reported as SYS_001
// without leaking the cause.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Reference: appErr.Reference,
		RequestID: requestID(c),
		Timestamp: now(),
	})
}

func envelope(c *gin.Context, data interface{}) SuccessResponse {
	return SuccessResponse{Data: data, RequestID: requestID(c), Timestamp: now()}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}
