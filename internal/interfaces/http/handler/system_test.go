package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("gtfs-review", "1.0.0", nil)
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("gtfs-review", "1.0.0", nil)
	c, w := newTestContext(http.MethodGet, "/system/info")

	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	resp := decode(t, w, &info)
	assert.True(t, resp.Success)
	assert.Equal(t, "gtfs-review", info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("gtfs-review", "1.0.0", nil)
	c, w := newTestContext(http.MethodGet, "/system/ping")

	h.Ping(c)

	require.Equal(t, http.StatusOK, w.Code)
	var ping PingResponse
	decode(t, w, &ping)
	assert.Equal(t, "pong", ping.Message)
	_, err := time.Parse(time.RFC3339, ping.Timestamp)
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("gtfs-review", "1.0.0", map[string]HealthCheck{"database": ok, "redis": ok})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var health HealthResponse
		resp := decode(t, w, &health)
		assert.True(t, resp.Success)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, health.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewSystemHandler("gtfs-review", "1.0.0", map[string]HealthCheck{
			"database": ok,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var health HealthResponse
		resp := decode(t, w, &health)
		assert.False(t, resp.Success)
		assert.Equal(t, "unavailable", health.Status)
		assert.Equal(t, "connection refused", health.Checks["redis"])
		assert.Equal(t, "ok", health.Checks["database"])
	})

	t.Run("checks see a deadline", func(t *testing.T) {
		var hasDeadline bool
		h := NewSystemHandler("gtfs-review", "1.0.0", map[string]HealthCheck{
			"database": func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		})
		c, _ := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.True(t, hasDeadline)
	})
}
