package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/ptavares/socialspaces/internal/config"
)

// RateLimit throttles by client IP over a fixed window. Counters live in
// the supplied storage so limits hold across instances when redis backs it.
func RateLimit(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			slog.Warn("Rate limit exceeded", "ip", c.IP(), "path", c.Path())
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}
