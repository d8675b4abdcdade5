package handlers

import (
	"errors"

	"github.com/ahmetk3436/medassist/internal/chat"
	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// chatStatus reports the status and message for a known orchestrator error.
func chatStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, chat.ErrNotFound), errors.Is(err, chat.ErrNoStreams):
		return fiber.StatusNotFound, true
	case errors.Is(err, chat.ErrForbidden):
		return fiber.StatusForbidden, true
	case errors.Is(err, chat.ErrRateLimited):
		return fiber.StatusTooManyRequests, true
	}
	return fiber.StatusInternalServerError, false
}

// chatError maps orchestrator errors to responses. Unknown errors become a
// generic 500.
func chatError(c *fiber.Ctx, err error) error {
	code, known := chatStatus(err)
	if !known {
		return errorJSON(c, code, "An error occurred while processing your request!")
	}
	return errorJSON(c, code, err.Error())
}

func isNotFound(err error) bool { return errors.Is(err, clinic.ErrNotFound) }

func storeError(c *fiber.Ctx, err error, fallback string) error {
	var nf *clinic.NotFoundError
	if errors.As(err, &nf) {
		return errorJSON(c, fiber.StatusNotFound, nf.Error())
	}
	return errorJSON(c, fiber.StatusInternalServerError, fallback)
}
