package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// corsRequest sends method to an engine guarded by cfg, with the given Origin.
func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSWithConfig(cfg))
	engine.GET("/customers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/customers/c-1", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	const front = "https://front.example.com"
	whitelisted := DefaultCORSConfig()
	whitelisted.AllowOrigins = []string{front}
	wildcard := DefaultCORSConfig()
	wildcard.AllowOrigins = []string{"*"}

	tests := []struct {
		name            string
		cfg             CORSConfig
		method          string
		origin          string
		wantCode        int
		wantAllowOrigin string
	}{
		{"allowed origin", whitelisted, http.MethodGet, front, http.StatusOK, front},
		{"unknown origin", whitelisted, http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"preflight", whitelisted, http.MethodOptions, front, http.StatusNoContent, front},
		{"wildcard", wildcard, http.MethodGet, "https://anywhere.example.com", http.StatusOK, "*"},
		{"empty whitelist preflight", DefaultCORSConfig(), http.MethodOptions, front, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsRequest(tt.cfg, tt.method, tt.origin)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWithConfig_Headers(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://front.example.com"}
	h := corsRequest(cfg, http.MethodGet, "https://front.example.com").Header()

	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, h.Get("Access-Control-Expose-Headers"), ViewStaleHeader)
	assert.Contains(t, h.Get("Access-Control-Allow-Headers"), PermissionsHeader)
	assert.Equal(t, "43200", h.Get("Access-Control-Max-Age"))

	// credentials are never allowed with a wildcard origin
	cfg.AllowOrigins = []string{"*"}
	assert.Empty(t, corsRequest(cfg, http.MethodGet, "https://x.example.com").Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Secure())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("sets a deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(time.Second))
		router.GET("/test", func(c *gin.Context) {
			deadline, ok := c.Request.Context().Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("zero disables", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/test", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
