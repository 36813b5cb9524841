package handlers

import (
	"mentorly/middleware"
	"mentorly/services/booking"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger set by middleware.RequestLogger, or the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// actor reads the authenticated caller placed in the context by JWTAuthMiddleware.
func actor(c *gin.Context) booking.Actor {
	return booking.Actor{ID: c.GetString(middleware.ActorIDKey), Role: c.GetString(middleware.ActorRoleKey)}
}

// bindJSON binds the body and answers 400 on failure. It reports whether the handler may go on.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("invalid request payload", zap.Error(err))
		utils.JSONError(c, 400, "Invalid request payload", err.Error())
		c.Abort()
		return false
	}
	return true
}
