package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles. It must run after
// JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ActorRoleKey)
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "This endpoint is not available for role '" + role + "'"})
			return
		}
		c.Next()
	}
}
