package middleware

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/cache"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (cache.Decision, error)
}

// RateLimit throttles requests per authenticated user, falling back to the client IP.
// A failing limiter lets the request through.
func RateLimit(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if identity, ok := IdentityFrom(c); ok {
			key = identity.UserID
		}

		d, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Str("path", c.Path()).Msg("rate limiter unavailable, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			log.Info().Str("key", key).Str("path", c.Path()).Msg("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		}
		return c.Next()
	}
}
