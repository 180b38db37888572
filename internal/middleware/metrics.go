package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/metrics"
)

// Metrics records duration, count and in-flight requests labelled by route template.
// It must run inside RequestLogger so the response status is final when it is read.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestInFlight.Inc()
			defer m.RequestInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			code := strconv.Itoa(status)
			m.RequestDuration.WithLabelValues(c.Request().Method, route, code).Observe(time.Since(start).Seconds())
			m.RequestTotal.WithLabelValues(c.Request().Method, route, code).Inc()
			return err
		}
	}
}
