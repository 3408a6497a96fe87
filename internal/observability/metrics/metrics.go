package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoplist_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shoplist_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	listOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoplist_list_operations_total",
		Help: "Count of list membership and lifecycle operations",
	}, []string{"operation"})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shoplist_ws_connections",
		Help: "Number of open websocket subscriptions",
	})
)

// CountListOp records one membership/lifecycle operation on a list.
func CountListOp(operation string) {
	listOperations.WithLabelValues(operation).Inc()
}

func WSConnected()    { wsConnections.Inc() }
func WSDisconnected() { wsConnections.Dec() }

// GinMiddleware instruments requests with Prometheus metrics.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
