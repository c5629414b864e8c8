package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		// errors are never cacheable
		if c.Response().StatusCode() >= 400 {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/health" || path == "/ready":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/api/crimes":
			ttl = "public, max-age=900"

		case path == "/api/search":
			ttl = "public, max-age=86400" // fixed city list

		case strings.HasPrefix(path, "/api/cities"):
			ttl = "public, max-age=86400"

		case strings.HasPrefix(path, "/static/"):
			ttl = "public, max-age=604800"

		case path == "/sitemap.xml" || path == "/robots.txt":
			ttl = "public, max-age=86400"

		case strings.HasPrefix(path, "/api/"):
			ttl = "public, max-age=300"

		default:
			ttl = "public, max-age=600" // rendered pages
		}

		c.Set(fiber.HeaderCacheControl, ttl)
		return err
	}
}
