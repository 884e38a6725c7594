package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// rateLimit allows 120 requests per minute per client IP.
func rateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          120,
		Expiration:   time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
		},
	})
}

var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"X-API-Version":          "1.0.0",
}

func securityHeadersMiddleware(c *fiber.Ctx) error {
	for k, v := range securityHeaders {
		c.Set(k, v)
	}
	return c.Next()
}

// SetupRoutes mounts the REST API, GraphQL, docs and both websockets on app.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(
		compress.New(compress.Config{Level: compress.LevelBestSpeed}),
		requestid.New(),
		RequestIDLogMiddleware(deps.logger()),
		AccessLogMiddleware(),
		rateLimit(),
		securityHeadersMiddleware,
		DeprecationMiddleware(deprecatedRoutes),
		ETagMiddleware(),
		CachingMiddleware(),
	)

	// Health checks run without the request timeout.
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")
	v1.Get("/routes", withTimeout(ListRoutesHandler(deps)))
	v1.Post("/routes", withTimeout(CreateRouteHandler(deps)))
	v1.Get("/routes/search", withTimeout(SearchRoutesHandler(deps)))
	v1.Get("/routes/:id", withTimeout(GetRouteHandler(deps)))
	v1.Put("/routes/:id", withTimeout(UpdateRouteHandler(deps)))
	v1.Delete("/routes/:id", withTimeout(DeleteRouteHandler(deps)))
	v1.Get("/routes/:id/kml", withTimeout(RouteKMLHandler(deps)))

	v1.Get("/geozones", withTimeout(ListGeozonesHandler(deps)))
	v1.Post("/geozones", withTimeout(CreateGeozoneHandler(deps)))
	v1.Get("/geozones/kml", withTimeout(GeozonesKMLHandler(deps)))
	v1.Get("/geozones/catalog", CatalogStatusHandler(deps))
	v1.Get("/geozones/:id", withTimeout(GetGeozoneHandler(deps)))
	v1.Delete("/geozones/:id", withTimeout(DeleteGeozoneHandler(deps)))

	// Deprecated aliases kept for older dashboards
	v1.Get("/geofences", withTimeout(ListGeozonesHandler(deps)))
	v1.Get("/geofences/:id", withTimeout(GetGeozoneHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, deps.logger())

	// WebSocket
	app.Get("/ws/editor", EditorUpgradeHandler(deps), websocket.New(EditorSocketHandler(deps)))
	app.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(WebSocketHandler(deps.NATS, deps.logger())))
}
