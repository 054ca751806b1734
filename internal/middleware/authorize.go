package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatescout/internal/models"
)

// RequireRoles must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		if _, ok := roleSet[identity.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
			return
		}

		c.Next()
	}
}
