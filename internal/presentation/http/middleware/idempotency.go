package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewpos-api/pkg/apperror"
)

const (
	// IdempotencyKeyHeader carries the register's request id for a checkout.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader is set when a request id matched an already committed sale.
	ReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 64
	idempotencyKeyCtx    = "idempotency_key"
)

// Idempotency validates the Idempotency-Key header and stores it on the
// context. Nothing is cached here: the key becomes the sale's request id and
// the unique index on that column is what makes retries safe.
func Idempotency(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))

		if key == "" {
			if required {
				response.ValidationError(c, []apperror.FieldError{
					{Field: IdempotencyKeyHeader, Message: "Idempotency-Key header is required for this request"},
				})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if len(key) > maxIdempotencyKeyLen {
			response.ValidationError(c, []apperror.FieldError{
				{Field: IdempotencyKeyHeader, Message: "must be at most 64 characters"},
			})
			c.Abort()
			return
		}

		c.Set(idempotencyKeyCtx, key)
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key, or "" when none was sent.
func GetIdempotencyKey(c *gin.Context) string {
	return c.GetString(idempotencyKeyCtx)
}
