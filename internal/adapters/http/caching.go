package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that the handler
// left without one. Routes are edited live, so they are never cached by
// shared caches; the geozone catalog changes rarely.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case path == "/graphql":
		return "private, max-age=0"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	case strings.HasSuffix(path, "/kml"):
		return "private, max-age=60"
	case strings.HasPrefix(path, "/v1/routes"):
		return "private, no-cache"
	case strings.HasPrefix(path, "/v1/geozones"), strings.HasPrefix(path, "/v1/geofences"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=30"
	}
	return ""
}
