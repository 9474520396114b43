package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/skipvault/skipvault-go/internal/handler"
	"github.com/skipvault/skipvault-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Segment *handler.SegmentHandler
	Vote    *handler.VoteHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Health and metrics (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	lookupLimit := middleware.NewLookupRateLimiter()
	submitLimit := middleware.NewSubmitRateLimiter()
	voteLimit := middleware.NewVoteRateLimiter()

	// Segment routes
	api.Post("/segments", h.Segment.Submit, submitLimit.Handler())
	api.Post("/segments/viewed", h.Segment.Viewed, lookupLimit.Handler())
	api.Get("/segments/:hashPrefix", h.Segment.GetByHashPrefix, lookupLimit.Handler())
	api.Get("/segments", h.Segment.GetByVideoID, lookupLimit.Handler())

	// Vote routes
	api.Post("/votes", h.Vote.Cast, voteLimit.Handler())

	// Lock list
	api.Get("/locks", h.Segment.GetLocks, lookupLimit.Handler())
}
