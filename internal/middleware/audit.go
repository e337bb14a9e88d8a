package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit logs one line per completed request with its outcome and latency. The
// request id set by RequestID rides along so log lines correlate with the
// response header the client saw.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		reqID, _ := c.Locals(requestIDHeader).(string)
		attrs := []any{
			slog.String("request_id", reqID),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			logger.Error("request failed", append(attrs, slog.Any("error", err))...)
			return err
		}
		logger.Info("request served", attrs...)
		return nil
	}
}
