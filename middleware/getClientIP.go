package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP keys rate limits and logs. The deployment sits behind a proxy that sets
// X-Forwarded-For, so its first hop wins over the socket address.
func getClientIP(c *gin.Context) string {
	if first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if real := strings.TrimSpace(c.GetHeader("X-Real-IP")); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
