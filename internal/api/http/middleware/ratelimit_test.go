package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/shoplist-app/shoplist-backend/internal/api/http/middleware"
)

func newLimitedRouter(r rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(r, burst))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func do(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("requests beyond the burst are rejected", func(t *testing.T) {
		router := newLimitedRouter(rate.Limit(0.001), 2)

		assert.Equal(t, http.StatusOK, do(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, do(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, do(router, "10.0.0.1").Code)
	})

	t.Run("limits are tracked per client IP", func(t *testing.T) {
		router := newLimitedRouter(rate.Limit(0.001), 1)

		assert.Equal(t, http.StatusOK, do(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, do(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, do(router, "10.0.0.2").Code)
	})
}
