// Package metrics defines and registers the custom Prometheus metrics of the
// work items API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; GET /metrics exposes them.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "workitems"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route template (e.g. "/api/work-items/:id")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// WorkItemsCreatedTotal counts created work items.
// Label:
//   - priority: "Low", "Medium" or "High"
var WorkItemsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "work_items_created_total",
		Help:      "Total number of work items created, by priority.",
	},
	[]string{"priority"},
)

// WorkItemMutationsTotal counts successful updates and deletions.
// Label:
//   - operation: "update" or "delete"
var WorkItemMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "work_item_mutations_total",
		Help:      "Total number of work item updates and deletions.",
	},
	[]string{"operation"},
)

// AuthOutcomesTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success" or "failure"
var AuthOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_outcomes_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthResult returns the result label for err.
func AuthResult(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Middleware records request counts and latency. A handler error is rendered
// here so the final status code is known, then returned for outer middleware;
// the error handler skips responses that are already committed.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
