package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

var (
	errNotConfigured = errors.New("not configured")
	errNotLoaded     = errors.New("not loaded")
	errDisconnected  = errors.New("disconnected")
)

// dependencyCheck is one readiness check. A failing optional check reports
// "degraded" without taking the instance out of rotation.
type dependencyCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

func readinessChecks(deps *Dependencies) []dependencyCheck {
	return []dependencyCheck{
		{name: "database", required: true, check: func(ctx context.Context) error {
			if deps.DB == nil {
				return errNotConfigured
			}
			return deps.DB.Ping(ctx)
		}},
		{name: "catalog", required: true, check: func(context.Context) error {
			switch {
			case deps.Catalog == nil:
				return errNotConfigured
			case !deps.Catalog.Loaded():
				return errNotLoaded
			}
			return nil
		}},
		{name: "nats", check: func(context.Context) error {
			switch {
			case deps.NATS == nil:
				return errNotConfigured
			case !deps.NATS.IsConnected():
				return errDisconnected
			}
			return nil
		}},
		{name: "cache", check: func(ctx context.Context) error {
			if deps.Cache == nil {
				return errNotConfigured
			}
			return deps.Cache.Ping(ctx)
		}},
	}
}

// HealthHandler reports liveness.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler runs every readiness check concurrently. The database and
// the geozone catalog are required; NATS and the cache only degrade.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	all := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
		defer cancel()

		var (
			mu       sync.Mutex
			checks   = make(map[string]string, len(all))
			failed   bool
			degraded bool
		)
		g, gctx := errgroup.WithContext(ctx)
		for _, p := range all {
			g.Go(func() error {
				err := p.check(gctx)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					checks[p.name] = "ok"
				case errors.Is(err, errNotConfigured) && !p.required:
					checks[p.name] = err.Error()
				case p.required:
					checks[p.name] = "error: " + err.Error()
					failed = true
				default:
					checks[p.name] = "error: " + err.Error()
					degraded = true
				}
				return nil
			})
		}
		_ = g.Wait()

		status, code := "ready", fiber.StatusOK
		switch {
		case failed:
			status, code = "not ready", fiber.StatusServiceUnavailable
		case degraded:
			status = "degraded"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
