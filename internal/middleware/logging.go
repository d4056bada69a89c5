package middleware

import (
	"log/slog"
	"time"

	"pawfeed/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// RequestLogging logs every request with its correlation id and latency.
// The correlation id comes from the requestid middleware when present.
func RequestLogging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			rid = observability.GenerateCorrelationID()
		}
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), rid))

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("correlation_id", rid),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		if status >= 500 {
			observability.GlobalLogger.Error("request", attrs...)
		} else {
			observability.GlobalLogger.Info("request", attrs...)
		}
		return err
	}
}
