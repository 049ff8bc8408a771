package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAPIKeyRouter(cfg APIKeyConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyMiddleware(cfg))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestAPIKeyMiddleware_MissingHeader(t *testing.T) {
	r := newAPIKeyRouter(APIKeyConfig{HeaderName: "X-WARMUP-API-KEY", ValidAPIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyMiddleware_WrongKey(t *testing.T) {
	r := newAPIKeyRouter(APIKeyConfig{HeaderName: "X-WARMUP-API-KEY", ValidAPIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-WARMUP-API-KEY", "wrong")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	r := newAPIKeyRouter(APIKeyConfig{HeaderName: "X-WARMUP-API-KEY", ValidAPIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-WARMUP-API-KEY", "secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyMiddleware_TrimsWhitespace(t *testing.T) {
	r := newAPIKeyRouter(APIKeyConfig{HeaderName: "X-WARMUP-API-KEY", ValidAPIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-WARMUP-API-KEY", "  secret  ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
