package handler

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool     Pinger
	optional map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool, optional: map[string]Pinger{}}
}

// WithDependency adds a dependency whose failure degrades, but does not fail, the check.
func (h *HealthHandler) WithDependency(name string, p Pinger) *HealthHandler {
	h.optional[name] = p
	return h
}

// Check performs a health check by pinging the database and any optional dependency.
// Returns 503 with {"status": "unhealthy"} only when the database is unreachable.
// An unreachable optional dependency is reported as {"status": "degraded"}.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.UserContext()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}

	names := make([]string, 0, len(h.optional))
	for name := range h.optional {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	checks := fiber.Map{"database": "ok"}
	for _, name := range names {
		if err := h.optional[name].Ping(c.UserContext()); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("health check: dependency unreachable")
			checks[name] = "unreachable"
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	return c.JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}
