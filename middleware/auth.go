package middleware

import (
	"net/http"
	"strings"

	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	ActorIDKey   = "actorID"
	ActorRoleKey = "actorRole"
)

// JWTAuthMiddleware accepts a bearer token issued by the identity service and stores the
// caller's id and role in the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		actorID, role, err := utils.ExtractActor(tokenString)
		if err != nil {
			utils.GetLogger().Debug("rejected token", zap.String("ip", getClientIP(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ActorIDKey, actorID)
		c.Set(ActorRoleKey, role)
		c.Next()
	}
}
