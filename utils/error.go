package utils

import (
	"errors"
	"net/http"

	"mentorly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses.
// StateChanged tells the caller whether anything was persisted before the failure.
type ErrorResponse struct {
	Message      string `json:"message"`
	Details      string `json:"details,omitempty"`
	Code         string `json:"code,omitempty"`
	StateChanged bool   `json:"stateChanged"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// HTTPStatus maps a domain error to the status code returned to callers.
func HTTPStatus(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeInvalidRange, models.CodeInvalidSchedule, models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeSlotNotFound, models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeSlotUnavailable, models.CodeDuplicateEnrollment, models.CodeInvalidTransition,
		models.CodeCancellationWindow, models.CodeBusy:
		return http.StatusConflict
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeGateway, models.CodeMeetingProvider:
		return http.StatusBadGateway
	}
	if errors.Is(err, models.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// AbortWithError writes err as a structured response using its domain code.
func AbortWithError(c *gin.Context, err error, stateChanged bool) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "Internal Server Error"
	} else {
		GetLogger().Debug("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:      msg,
		Code:         models.ErrorCode(err),
		StateChanged: stateChanged,
	})
}
