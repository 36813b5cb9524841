package middleware

import (
	"net/http"
	"sync"
	"time"

	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	perMin   int
	mu       sync.Mutex
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
		s.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware allows perMin requests per minute per client IP, with the same burst.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	if perMin <= 0 {
		perMin = 200
	}
	store := &rateLimiterStore{limiters: make(map[string]*rate.Limiter), perMin: perMin}
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			utils.GetLogger().Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
				Message: "Rate limit exceeded",
				Details: "try again in a minute",
				Code:    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
