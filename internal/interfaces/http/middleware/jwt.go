package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"github.com/vansales/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// ContextKeyJWTClaims is the gin context key for validated claims.
	ContextKeyJWTClaims = "jwt_claims"
	// ContextKeyJWTToken is the gin context key for the raw bearer token.
	ContextKeyJWTToken = "jwt_token"
)

// JWTConfig configures the authentication middleware.
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist may be nil; revocation checks are then skipped.
	Blacklist auth.TokenBlacklist
	// SkipPaths are exact request paths that bypass authentication.
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth returns a middleware that validates the bearer token, rejects
// revoked tokens and stores the claims in the gin context. The request
// context is enriched so downstream log entries carry tenant and user IDs.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or malformed Authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, authErrorMessage(err))
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// revocation store unavailable: let the request through, the
				// token itself is still cryptographically valid
				log.Error("token blacklist check failed", zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, "Token has been revoked")
				return
			}
		}

		c.Set(ContextKeyJWTClaims, claims)
		c.Set(ContextKeyJWTToken, token)

		reqLog := logger.FromContext(c.Request.Context())
		ctx, reqLog := logger.WithTenantID(c.Request.Context(), reqLog, claims.TenantID)
		ctx, _ = logger.WithUserID(ctx, reqLog, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetJWTClaims retrieves validated claims from the gin context.
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyJWTClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetRawToken retrieves the raw bearer token from the gin context.
func GetRawToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyJWTToken)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authErrorMessage(err error) string {
	switch err {
	case auth.ErrExpiredToken:
		return "Token has expired"
	case auth.ErrTokenNotYetValid:
		return "Token is not yet valid"
	default:
		return "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString(ContextKeyRequestID)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.CodeUnauthorized, message, requestID))
}
