package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OrdersCreatedTotal tracks successfully created orders
	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		},
	)

	// OrderRejectionsTotal tracks order creation failures by domain error code
	OrderRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_rejections_total",
			Help: "Total number of rejected order creations",
		},
		[]string{"code"},
	)

	// OrderStatusTransitionsTotal tracks applied status transitions
	OrderStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Total number of applied order status transitions",
		},
		[]string{"to"},
	)

	// DBRetriesTotal tracks transient database failures that were retried
	DBRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_retries_total",
			Help: "Total number of retried transient database failures",
		},
	)

	// OrderIDCollisionsTotal tracks order ID uniqueness collisions
	OrderIDCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_id_collisions_total",
			Help: "Total number of order ID uniqueness collisions",
		},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	// RateLimitedTotal tracks requests rejected by the order rate limiter
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
