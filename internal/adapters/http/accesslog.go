package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one structured line per request through the
// request-scoped logger. 5xx and handler errors log at error, 4xx at warn.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method, path := c.Method(), c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("ip", c.IP()),
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		LoggerFromCtx(c.UserContext()).LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
