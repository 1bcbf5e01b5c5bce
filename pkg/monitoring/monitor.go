package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Total number of answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	RejectionReasonCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_rejection_reasons_total",
			Help: "Eligibility failures at submit time by reason code",
		},
		[]string{"reason"},
	)

	StaleEventCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_stale_tracking_events_total",
			Help: "Tracking events discarded because their window generation was superseded",
		},
	)

	ProbeCloseCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_probe_detected_closes_total",
			Help: "External windows detected closed by the liveness probe rather than a client event",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SubmissionCounter)
	prometheus.MustRegister(RejectionReasonCounter)
	prometheus.MustRegister(StaleEventCounter)
	prometheus.MustRegister(ProbeCloseCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
