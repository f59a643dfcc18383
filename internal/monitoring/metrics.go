// Package monitoring exposes Prometheus metrics for the sketch bridge.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	MessagesAccepted *prometheus.CounterVec
	MessagesRejected *prometheus.CounterVec
	ResizesCoalesced prometheus.Counter

	// Transpiler metrics
	TranspileTotal *prometheus.CounterVec

	// Surface metrics
	SurfacesActive prometheus.Gauge
	RunsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sketchbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		MessagesAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchbridge_messages_accepted_total",
				Help: "Bridge messages accepted, by type",
			},
			[]string{"type"},
		),
		MessagesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchbridge_messages_rejected_total",
				Help: "Bridge messages rejected, by guard",
			},
			[]string{"reason"},
		),
		ResizesCoalesced: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sketchbridge_resizes_coalesced_total",
				Help: "Resize reports dropped or superseded inside the throttle window",
			},
		),
		TranspileTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchbridge_transpile_total",
				Help: "Transpile attempts, by outcome",
			},
			[]string{"status"},
		),
		SurfacesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sketchbridge_surfaces_active",
				Help: "Currently mounted sketch surfaces",
			},
		),
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchbridge_runs_total",
				Help: "Sketch runs, by outcome",
			},
			[]string{"status"},
		),
	}
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
