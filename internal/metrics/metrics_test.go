package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/booking-conversion-relay/internal/metrics"
)

func TestObserveUpstream(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveUpstream("meta", http.StatusOK, nil)
	m.ObserveUpstream("meta", http.StatusBadRequest, nil)
	m.ObserveUpstream("gtm", 0, errors.New("dial tcp: refused"))

	want := `
# HELP relay_upstream_requests_total Tracks outbound calls per target and outcome.
# TYPE relay_upstream_requests_total counter
relay_upstream_requests_total{outcome="error",target="gtm"} 1
relay_upstream_requests_total{outcome="ok",target="meta"} 1
relay_upstream_requests_total{outcome="rejected",target="meta"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "relay_upstream_requests_total"))
}

func TestObserveUpstream_NilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() { m.ObserveUpstream("meta", http.StatusOK, nil) })
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	want := `
# HELP relay_http_requests_total Tracks the number of HTTP requests per route and status code.
# TYPE relay_http_requests_total counter
relay_http_requests_total{code="200",method="GET",path="/health"} 2
relay_http_requests_total{code="404",method="GET",path="unknown"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "relay_http_requests_total"))

	n, err := testutil.GatherAndCount(reg, "relay_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one histogram series per route")
}

func TestRegisterStoreSize(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	n := 3
	metrics.RegisterStoreSize(reg, func() int { return n })

	want := `
# HELP relay_mapping_entries Number of registered appointments awaiting a webhook.
# TYPE relay_mapping_entries gauge
relay_mapping_entries 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "relay_mapping_entries"))
}
