package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/mathieuadams/ukcrimerepository/internal/pkg/metrics"
)

// apiTimeout bounds one API request. It sits above the longest upstream
// timeout (crimes, 15s) so upstream deadlines surface as 504s first.
const apiTimeout = 20 * time.Second

// SetupRoutes registers the JSON API, GraphQL, pages and docs.
func SetupRoutes(app *fiber.App, deps *Dependencies) error {
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

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	api := app.Group("/api")
	api.Get("/crimes", timeout.NewWithContext(CrimesHandler(deps), apiTimeout))
	api.Get("/dates", timeout.NewWithContext(DatesHandler(deps), apiTimeout))
	api.Get("/forces", timeout.NewWithContext(ForcesHandler(deps), apiTimeout))
	api.Get("/search", SearchHandler(deps))
	api.Post("/contact", timeout.NewWithContext(ContactHandler(deps), apiTimeout))
	api.Get("/cities", ListCitiesHandler(deps))
	api.Get("/cities/:name", GetCityHandler(deps))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	return SetupPages(app, deps)
}
