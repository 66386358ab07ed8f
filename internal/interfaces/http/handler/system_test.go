package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("Gym Ledger API", "1.0.0")
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
	assert.Empty(t, h.checks)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("Gym Ledger API", "1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Gym Ledger API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Health(t *testing.T) {
	call := func(h *SystemHandler) (*httptest.ResponseRecorder, map[string]interface{}) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)
		h.Health(c)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp.Data.(map[string]interface{})
	}

	t.Run("no checks", func(t *testing.T) {
		w, data := call(NewSystemHandler("api", "dev"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", data["status"])
		assert.Nil(t, data["checks"])

		_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
		assert.NoError(t, err)
	})

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("api", "dev").
			AddCheck("database", func(context.Context) error { return nil }).
			AddCheck("redis", func(context.Context) error { return nil })

		w, data := call(h)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, map[string]interface{}{"database": "ok", "redis": "ok"}, data["checks"])
	})

	t.Run("failing check degrades", func(t *testing.T) {
		h := NewSystemHandler("api", "dev").
			AddCheck("database", func(context.Context) error { return nil }).
			AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		w, data := call(h)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", data["status"])
		checks := data["checks"].(map[string]interface{})
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "connection refused", checks["redis"])
	})

	t.Run("check receives a deadline", func(t *testing.T) {
		var hasDeadline bool
		h := NewSystemHandler("api", "dev").AddCheck("database", func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})
		call(h)
		assert.True(t, hasDeadline)
	})
}
