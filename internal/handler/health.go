package handler

import (
	"ecg-academy/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.Envelope
// @Router /healthz [get]
func Healthz(c *fiber.Ctx) error {
	return c.JSON(dto.OK(fiber.Map{"status": "ok"}))
}
