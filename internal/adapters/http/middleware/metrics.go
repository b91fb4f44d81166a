package middleware

import (
	"strconv"
	"time"

	"finance-backoffice/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetrics records request counts and latencies per route template
func HTTPMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.ObserveHTTP(route, c.Method(), strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
