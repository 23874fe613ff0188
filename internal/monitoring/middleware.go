package monitoring

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware records request count, duration and in-flight requests.
// Requests are labelled by route template so ids do not explode cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				// Skip collecting metrics from metrics endpoint itself
				return next(c)
			}

			method := c.Request().Method
			m.ActiveConnections.Inc()
			defer m.ActiveConnections.Dec()

			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
				m.HttpRequestDuration.WithLabelValues(method, routeOf(c)).Observe(v)
			}))
			err := next(c)
			timer.ObserveDuration()

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.HttpRequestsTotal.WithLabelValues(method, routeOf(c), strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// RecordInteraction counts one like or follow request.
func (m *Metrics) RecordInteraction(kind, outcome string) {
	m.InteractionsTotal.WithLabelValues(kind, outcome).Inc()
}

func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
