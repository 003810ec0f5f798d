// Package metrics exposes Prometheus collectors for the relay's inbound
// endpoints and outbound calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the relay's collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamTotal   *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_http_requests_total",
				Help: "Tracks the number of HTTP requests per route and status code.",
			}, []string{"method", "path", "code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "relay_http_request_duration_seconds",
				Help: "Tracks the latencies for HTTP requests per route.",
				// Dominated by the upstream round trip. Max of 10.24.
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			}, []string{"method", "path"},
		),
		upstreamTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_upstream_requests_total",
				Help: "Tracks outbound calls per target and outcome.",
			}, []string{"target", "outcome"},
		),
	}
}

// RegisterStoreSize exposes the number of pending mapping entries.
func RegisterStoreSize(reg prometheus.Registerer, size func() int) {
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "relay_mapping_entries",
			Help: "Number of registered appointments awaiting a webhook.",
		},
		func() float64 { return float64(size()) },
	)
}

// Middleware records request counts and latency labelled by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one outbound call. A nil error with a non-2xx
// status counts as "rejected".
func (m *Metrics) ObserveUpstream(target string, status int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		outcome = "rejected"
	}
	m.upstreamTotal.WithLabelValues(target, outcome).Inc()
}
