package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/interfaces/http/dto"
)

// ContextKeyTenantContext is the gin context key for the tenant context.
const ContextKeyTenantContext = "tenant_context"

// TenantContext builds a shared.TenantContext from the validated JWT claims.
// Any missing or malformed claim fails closed; no request reaches a handler
// without an unambiguous tenant.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			abortConfiguration(c, "Authentication context is missing")
			return
		}

		tenantID, err := claims.GetTenantUUID()
		if err != nil {
			abortConfiguration(c, "Tenant ID claim is malformed")
			return
		}
		userID, err := claims.GetUserUUID()
		if err != nil {
			abortConfiguration(c, "User ID claim is malformed")
			return
		}
		branchID, err := claims.GetBranchUUID()
		if err != nil {
			abortConfiguration(c, "Branch ID claim is malformed")
			return
		}

		tctx, err := shared.NewTenantContext(tenantID, userID, shared.Role(claims.Role), branchID)
		if err != nil {
			abortConfiguration(c, "Tenant context could not be established")
			return
		}

		c.Set(ContextKeyTenantContext, tctx)
		c.Next()
	}
}

// GetTenantContext retrieves the tenant context from the gin context.
func GetTenantContext(c *gin.Context) (shared.TenantContext, bool) {
	value, exists := c.Get(ContextKeyTenantContext)
	if !exists {
		return shared.TenantContext{}, false
	}
	tctx, ok := value.(shared.TenantContext)
	if !ok || !tctx.Valid() {
		return shared.TenantContext{}, false
	}
	return tctx, true
}

func abortConfiguration(c *gin.Context, message string) {
	requestID := c.GetString(ContextKeyRequestID)
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponse("CONFIGURATION_ERROR", message, requestID))
}
