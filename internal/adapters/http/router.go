package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/sightseer/internal/pkg/metrics"
)

// Options tunes the router. Zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	// RateLimit is requests per minute per client IP.
	RateLimit int
	Version   string
	// DocsPath is the OpenAPI document served at /docs/openapi.yaml.
	DocsPath string
}

func (o Options) requestTimeout() time.Duration {
	if o.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return o.RequestTimeout
}

func (o Options) rateLimit() int {
	if o.RateLimit <= 0 {
		return 120
	}
	return o.RateLimit
}

func (o Options) docsPath() string {
	if o.DocsPath == "" {
		return "api/openapi.yaml"
	}
	return o.DocsPath
}

func (o Options) version() string {
	if o.Version == "" {
		return "dev"
	}
	return o.Version
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:        deps.Options.rateLimit(),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", deps.Options.version())
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	limit := deps.Options.requestTimeout()
	t := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, limit)
	}

	v1 := app.Group("/v1")

	v1.Get("/stations", t(ListStationsHandler(deps)))
	v1.Get("/stations/nearby", t(NearbyStationsHandler(deps)))
	v1.Post("/stations", t(CreateStationHandler(deps)))
	v1.Get("/stations/:id", t(GetStationHandler(deps)))
	v1.Get("/stations/:id/pois", t(StationPOIsHandler(deps)))

	v1.Get("/tours", t(ListToursHandler(deps)))
	v1.Post("/tours", t(CreateTourHandler(deps)))
	v1.Get("/tours/:slug", t(GetTourHandler(deps)))
	v1.Get("/tours/:slug/routes", t(TourRoutesHandler(deps)))
	v1.Get("/tours/:slug/schedules", t(TourSchedulesHandler(deps)))

	v1.Post("/routes", t(CreateRouteHandler(deps)))
	v1.Get("/routes/:id", t(GetRouteHandler(deps)))
	v1.Get("/routes/:id/segments", t(RouteSegmentsHandler(deps)))
	v1.Put("/routes/:id/segments", t(ReplaceRouteSegmentsHandler(deps)))
	v1.Get("/routes/:id/chain", t(RouteChainHandler(deps)))
	v1.Get("/routes/:id/stops", t(RouteStopsHandler(deps)))
	v1.Delete("/segments/:id", t(DeleteSegmentHandler(deps)))

	v1.Get("/buses", t(ListBusesHandler(deps)))
	v1.Get("/buses/:id", t(GetBusHandler(deps)))

	// GraphQL
	app.Post("/graphql", t(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.Options.docsPath())

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
