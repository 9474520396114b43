package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipvault/skipvault-go/internal/service"
)

type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *service.CacheService
}

func NewHealthHandler(pool *pgxpool.Pool, cache *service.CacheService) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache}
}

// Live handles GET /health/live
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — checks database and cache connectivity.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "cache": "disabled"}
	healthy := true

	if err := h.pool.Ping(c.Context()); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if h.cache != nil && h.cache.Client() != nil {
		checks["cache"] = "ok"
		if err := h.cache.Client().Ping(c.Context()).Err(); err != nil {
			checks["cache"] = "unreachable"
		}
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
