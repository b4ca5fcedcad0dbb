package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/maheshrc27/storyflow/internal/transfer"
)

type StoryHandler struct {
	s service.StoryService
}

func NewStoryHandler(service service.StoryService) *StoryHandler {
	return &StoryHandler{s: service}
}

func (h *StoryHandler) CreateStory(c *fiber.Ctx) error {
	var body transfer.StoryCreation
	if err := c.BodyParser(&body); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse story",
		})
	}

	id, err := h.s.Create(c.Context(), &body)
	if err != nil {
		if errors.Is(err, service.ErrEventNotHandled) {
			slog.Warn(err.Error())
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"id":    id,
				"error": err.Error(),
			})
		}
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": id,
	})
}

func (h *StoryHandler) GetStory(c *fiber.Ctx) error {
	id, err := GetStoryID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	story, err := h.s.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(story)
}

func (h *StoryHandler) UpdateStory(c *fiber.Ctx) error {
	id, err := GetStoryID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var body transfer.StoryCreation
	if err := c.BodyParser(&body); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse story",
		})
	}

	if err := h.s.Update(c.Context(), id, &body); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *StoryHandler) RemoveStory(c *fiber.Ctx) error {
	id, err := GetStoryID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
