package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CtxBodyLimit holds the byte cap applied by MaxBodySize.
const CtxBodyLimit = "body_limit"

// MaxBodySize caps how much of the request body handlers may read.
// Reads past the cap fail with *http.MaxBytesError; see IsBodyTooLarge.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Set(CtxBodyLimit, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the body cap.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// BodyLimitFrom returns the cap set by MaxBodySize, or 0 when none applies.
func BodyLimitFrom(c *gin.Context) int64 {
	return c.GetInt64(CtxBodyLimit)
}
