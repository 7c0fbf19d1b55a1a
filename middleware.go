package ytsubs

import (
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type customMiddleware struct {
	path string
	mw   fiber.Handler
}

type customEndpoint struct {
	method  string
	path    string
	handler fiber.Handler
}

func createLoggingMiddleware(logger *zap.Logger, logIPs, logUserAgent bool) fiber.Handler {
	// Only called once, so we can do some work here that would be expensive per request.
	zapFieldCount := 5
	if logIPs {
		zapFieldCount++
	}
	if logUserAgent {
		zapFieldCount++
	}

	return func(c fiber.Ctx) error {
		start := time.Now()

		// First call the other handlers in the chain!
		err := c.Next()

		// Then log
		duration := time.Since(start).Milliseconds()
		durationString := fmt.Sprintf("%dms", duration)

		zapFields := make([]zap.Field, 0, zapFieldCount)
		zapFields = append(zapFields,
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", statusCode(c, err)),
			zap.String("duration", durationString),
			zap.Bool("success", err == nil),
		)
		if logIPs {
			zapFields = append(zapFields, zap.String("ip", c.IP()))
		}
		if logUserAgent {
			zapFields = append(zapFields, zap.String("userAgent", c.Get(fiber.HeaderUserAgent)))
		}

		logger.Info("Handled request", zapFields...)

		return err
	}
}

func createMetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// The route path instead of the URL keeps the number of time series low.
		path := c.Route().Path
		metrics.GetOrCreateCounter(fmt.Sprintf(`ytsubs_requests_total{path=%q,status="%d"}`, path, statusCode(c, err))).Inc()
		metrics.GetOrCreateHistogram(fmt.Sprintf(`ytsubs_request_duration_seconds{path=%q}`, path)).UpdateDuration(start)

		return err
	}
}

func corsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

// statusCode returns the status code the response will have.
// An error returned by the handler chain is only turned into a response by the error handler, after all middlewares ran.
func statusCode(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return fiber.StatusInternalServerError
}
