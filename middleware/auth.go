// middleware/user_context.go
package middleware

import (
	"strings"

	"habit-battle-system/logger"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the user identity set by Gateway.
// Every route behind it is user-scoped, so a missing X-User-ID is rejected.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			logger.Warn("❌ [USER_CTX] X-User-ID required but missing", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		logger.Debug("👤 [USER_CTX]", "user_id", userID, "path", c.Path())
		return c.Next()
	}
}

// UserID returns the identity stored by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
