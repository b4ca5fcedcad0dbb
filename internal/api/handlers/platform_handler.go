package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/maheshrc27/storyflow/internal/transfer"
)

type PlatformHandler struct {
	s service.PlatformService
}

func NewPlatformHandler(service service.PlatformService) *PlatformHandler {
	return &PlatformHandler{s: service}
}

func (h *PlatformHandler) GetPlatform(c *fiber.Ctx) error {
	id, err := GetPlatformID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	platform, err := h.s.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(platform)
}

func (h *PlatformHandler) SetCredentials(c *fiber.Ctx) error {
	id, err := GetPlatformID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var body transfer.PlatformCredentials
	if err := c.BodyParser(&body); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse credentials",
		})
	}

	if err := h.s.SetCredentials(c.Context(), id, &body); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
