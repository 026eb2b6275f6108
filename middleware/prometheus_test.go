package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestShouldCollectMetrics(t *testing.T) {
	assert.False(t, shouldCollectMetrics("/health"))
	assert.False(t, shouldCollectMetrics("/ready"))
	assert.False(t, shouldCollectMetrics("/metrics"))
	assert.True(t, shouldCollectMetrics("/profile/getAll"))
}

func TestPrometheusMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/profile/get", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := requestTotal.WithLabelValues(http.MethodGet, "/profile/get", "200")
	unmatched := requestTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before, beforeUnmatched := testutil.ToFloat64(counter), testutil.ToFloat64(unmatched)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile/get?id=1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile/get?id=2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
}
