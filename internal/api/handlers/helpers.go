package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/storyflow/internal/service"
)

func GetStoryID(c *fiber.Ctx) (int64, error) {
	return paramID(c, "invalid story id")
}

func GetPlatformID(c *fiber.Ctx) (int64, error) {
	return paramID(c, "invalid platform id")
}

func paramID(c *fiber.Ctx, msg string) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(msg)
	}
	return id, nil
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrStoryNotFound), errors.Is(err, service.ErrPlatformNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidStory), errors.Is(err, service.ErrInvalidCredentials):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrEventNotHandled):
		slog.Warn(err.Error())
		status = fiber.StatusAccepted
	default:
		slog.Error(err.Error())
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
