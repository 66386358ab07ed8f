package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// limitedEngine echoes how many body bytes the handler managed to read.
func limitedEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()), BodyLimit(limit))
	engine.Any("/payments", func(c *gin.Context) {
		n, err := io.Copy(io.Discard, c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "truncated after %d", n)
			return
		}
		c.String(http.StatusOK, "read %d", n)
	})
	return engine
}

func TestBodyLimit(t *testing.T) {
	payment := `{"amount":"1500.00","payment_method":"CASH"}`

	tests := []struct {
		name          string
		limit         int64
		method        string
		body          string
		contentLength int64
		wantCode      int
		wantBody      string
	}{
		{"body within limit", 1024, http.MethodPost, payment, int64(len(payment)), http.StatusOK, "read 44"},
		{"declared length over limit", 16, http.MethodPost, payment, int64(len(payment)), http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"streamed body capped while reading", 16, http.MethodPost, payment, -1, http.StatusBadRequest, "truncated after 16"},
		{"bodyless request", 4, http.MethodGet, "", 0, http.StatusOK, "read 0"},
		{"zero limit disables check", 0, http.MethodPost, strings.Repeat("x", 4096), 4096, http.StatusOK, "read 4096"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/payments", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			limitedEngine(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestBodyLimit_ErrorCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(strings.Repeat("x", 20)))
	req.Header.Set(logger.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	limitedEngine(10).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}
