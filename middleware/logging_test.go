package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/duynhne/profile-service/config"
)

func TestGetTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "w3c traceparent wins",
			headers: map[string]string{TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", TraceIDHeader: "ignored"},
			want:    "4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			name:    "x-trace-id fallback",
			headers: map[string]string{TraceIDHeader: "abc123"},
			want:    "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/profile/getAll", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}

	t.Run("generated when absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		id := GetTraceID(c)
		assert.Len(t, id, 32)
		assert.NotEqual(t, id, GetTraceID(c))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/profile/get", func(c *gin.Context) {
		GetLoggerFromGinContext(c).Info("inside handler")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile/get?id=1", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-1", w.Header().Get(TraceIDHeader))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "trace-1", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "HTTP request", entries[1].Message)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
	assert.Equal(t, "HTTP error", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestGetLoggerFromGinContextWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetLoggerFromGinContext(c))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(config.LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
