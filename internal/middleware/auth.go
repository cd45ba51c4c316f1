package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/utils"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"github.com/xavierjeanne/softdesk/pkg/response"
)

const (
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// IdentityLoader resolves a token subject to the stored caller.
type IdentityLoader interface {
	Identity(ctx context.Context, userID uint) (authz.Identity, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func AuthRequired(loader IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		identity, err := loader.Identity(c.Request.Context(), claims.UserID)
		if err != nil {
			if authz.IsCode(err, authz.CodeUnauthenticated) {
				abortUnauthorized(c, err.Error())
				return
			}
			logger.Error().Err(err).Uint("user_id", claims.UserID).Msg("failed to load identity")
			c.Abort()
			response.Error(c, err)
			return
		}

		c.Set(ContextIdentity, identity)
		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUsername, identity.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Abort()
	response.Unauthorized(c, msg)
}

// GetIdentity returns the caller, or the anonymous identity outside
// AuthRequired.
func GetIdentity(c *gin.Context) authz.Identity {
	if v, exists := c.Get(ContextIdentity); exists {
		if id, ok := v.(authz.Identity); ok {
			return id
		}
	}
	return authz.Anonymous()
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}
