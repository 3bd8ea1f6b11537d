package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
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

	case path == "/metrics", path == "/ws":
		return "no-cache"

	case path == "/graphql":
		return "private, max-age=0"

	// Chains change whenever segments are replaced.
	case strings.HasSuffix(path, "/chain"), strings.HasSuffix(path, "/stops"), strings.HasSuffix(path, "/segments"):
		return "public, max-age=60"

	case strings.HasPrefix(path, "/v1/stations/nearby"):
		return "public, max-age=300"

	case strings.HasSuffix(path, "/schedules"):
		return "public, max-age=60"

	case strings.HasPrefix(path, "/v1/stations"), strings.HasPrefix(path, "/v1/tours"), strings.HasPrefix(path, "/v1/buses"):
		return "public, max-age=600"

	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=300"
	}
	return ""
}
