package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	loggerKey    ctxKey = "logger"
)

// RequestIDLogMiddleware stores a request-scoped *slog.Logger carrying the
// Fiber request ID (and trace ID when a span is active) in the user context.
func RequestIDLogMiddleware(base *slog.Logger) fiber.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		ridStr, _ := c.Locals("requestid").(string)
		if ridStr == "" {
			return c.Next()
		}

		reqLogger := base.With("request_id", ridStr)
		ctx := c.UserContext()
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			reqLogger = reqLogger.With("trace_id", sc.TraceID().String())
		}

		ctx = context.WithValue(ctx, requestIDKey, ridStr)
		ctx = context.WithValue(ctx, loggerKey, reqLogger)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// RequestIDFromCtx returns the request ID stored by RequestIDLogMiddleware.
func RequestIDFromCtx(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}
