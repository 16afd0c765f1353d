// handlers/errors.go
package handlers

import (
	"errors"

	"habit-battle-system/logger"
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindPrecondition:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": message} with the status matching the error's category.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status := statusFor(svcErr.Kind)
		if status == fiber.StatusInternalServerError {
			logger.Error("❌ request failed", "path", c.Path(), "err", err)
		}
		return c.Status(status).JSON(fiber.Map{"error": svcErr.Message})
	}
	logger.Error("❌ request failed", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler is the fiber-level fallback for errors returned by handlers and
// middleware (including fiber's own 404/405).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
}
