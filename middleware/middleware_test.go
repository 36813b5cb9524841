package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorly/config"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(ActorIDKey), "role": c.GetString(ActorRoleKey)})
	})
	return r
}

func get(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "middleware-test"
	r := newEngine(JWTAuthMiddleware())

	tok, err := utils.GenerateToken("sp-1", utils.RoleSpecialist, time.Hour)
	require.NoError(t, err)
	w := get(r, map[string]string{"Authorization": "Bearer " + tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"sp-1","role":"specialist"}`, w.Body.String())

	expired, err := utils.GenerateToken("sp-1", utils.RoleSpecialist, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer " + expired}).Code)

	unknownRole, err := utils.GenerateToken("x", "superuser", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer " + unknownRole}).Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": tok}).Code, "missing Bearer prefix")
	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
}

func TestRequireRole(t *testing.T) {
	setRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ActorRoleKey, role) }
	}
	assert.Equal(t, http.StatusOK, get(newEngine(setRole("admin"), RequireRole("admin", "specialist")), nil).Code)
	assert.Equal(t, http.StatusForbidden, get(newEngine(setRole("customer"), RequireRole("admin")), nil).Code)
	assert.Equal(t, http.StatusForbidden, get(newEngine(RequireRole("admin")), nil).Code)
}

func TestRateLimitMiddlewareIsPerIP(t *testing.T) {
	r := newEngine(RateLimitMiddleware(2))
	first := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	second := map[string]string{"X-Real-IP": "198.51.100.2"}

	assert.Equal(t, http.StatusOK, get(r, first).Code)
	assert.Equal(t, http.StatusOK, get(r, first).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, first).Code)
	assert.Equal(t, http.StatusOK, get(r, second).Code)
}

func TestRequestLoggerEchoesRequestID(t *testing.T) {
	r := newEngine(RequestLogger())
	w := get(r, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = get(r, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
