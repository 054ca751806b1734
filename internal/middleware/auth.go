package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estatescout/internal/security"
)

const identityKey = "identity"

// TokenVerifier resolves an access token to the identity it was issued for.
type TokenVerifier interface {
	Authenticate(accessToken string) (security.Identity, error)
}

// Auth rejects requests without a valid bearer access token. A missing or
// malformed header and an expired token are 401; a token that fails
// verification otherwise is 403.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		identity, err := verifier.Authenticate(tokenStr)
		if errors.Is(err, security.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Auth.
func CurrentIdentity(c *gin.Context) (security.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return security.Identity{}, false
	}
	identity, ok := val.(security.Identity)
	return identity, ok
}
