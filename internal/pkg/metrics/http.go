package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	httpRequests = counterVec("http", "requests_total",
		"HTTP requests by route template and status", "method", "route", "status")

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.ExponentialBucketsRange(0.001, 10, 12),
	}, []string{"method", "route"})
)

// unmatchedRoute labels requests that matched no registered route, so
// arbitrary paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// Middleware records request count and latency per route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		if route == "" || route == "/" && c.Path() != "/" {
			route = unmatchedRoute
		}
		method := c.Method()

		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus registry.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
