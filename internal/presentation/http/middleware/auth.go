package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewpos-api/pkg/utils"
)

// Permissions carried in a cashier's access token.
const (
	PermissionProcessSales  = "process-sales"
	PermissionPrintReceipts = "print-receipts"
)

// Context keys set by CashierAuth.
const (
	CashierIDKey          = "cashier_id"
	CashierEmailKey       = "cashier_email"
	CashierPermissionsKey = "cashier_permissions"
)

// CashierAuth validates the register's bearer token and records who is
// ringing up sales on the context.
func CashierAuth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "A bearer token is required")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CashierIDKey, claims.UserID)
		c.Set(CashierEmailKey, claims.Email)
		c.Set(CashierPermissionsKey, claims.Permissions)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequirePermission rejects cashiers whose token lacks permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasPermission(c, permission) {
			response.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CashierID returns the authenticated cashier, or nil on unauthenticated routes.
func CashierID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(CashierIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// HasPermission reports whether the authenticated cashier holds permission.
func HasPermission(c *gin.Context, permission string) bool {
	v, ok := c.Get(CashierPermissionsKey)
	if !ok {
		return false
	}
	perms, _ := v.([]string)
	return slices.Contains(perms, permission)
}
