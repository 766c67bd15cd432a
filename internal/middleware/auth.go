// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/utils"
)

// Authenticator resolves a session token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// AuthRequired accepts a Bearer token or the session cookie. Capability checks
// happen in the handlers.
func AuthRequired(authenticator Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c, cookieName)
		if !ok {
			utils.UnauthorizedResponse(c, utils.T(c, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		identity, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.UnauthorizedResponse(c, utils.T(c, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		auth.SetIdentity(c, identity)
		c.Set("user_id", identity.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
