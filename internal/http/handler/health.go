package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check is a named dependency probe used by HealthCheck.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// LivenessProbe answers as long as the process serves HTTP.
//
// @Summary Liveness probe
// @Tags health
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	}
}

// HealthCheck pings every dependency and returns 503 when one fails.
//
// @Summary Dependency health
// @Tags health
// @Success 200 {object} map[string]any
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", slog.String("dependency", chk.Name), slog.Any("error", err))
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.JSON(fiber.Map{"ok": true, "status": "healthy"})
	}
}
