package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/httpx"
	"github.com/seuros/vidpulse/internal/logging"
)

var upTimeout = 2 * time.Second

func (u *UI) HandleHealth(c fiber.Ctx) error {
	return httpx.JSON(c, fiber.StatusOK, fiber.Map{
		"status":     "healthy",
		"service":    "vidpulse",
		"dashboards": u.registry.Len(),
	})
}

// HandleUp answers 200 when the report backend lists its platforms.
func (u *UI) HandleUp(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), upTimeout)
	defer cancel()

	if _, err := u.api.Platforms(ctx); err != nil {
		logging.L().Warn("backend unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).SendString("backend unavailable")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (u *UI) HandleVersion(c fiber.Ctx) error {
	return httpx.JSON(c, fiber.StatusOK, fiber.Map{
		"version": u.version,
	})
}
