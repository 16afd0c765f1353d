// middleware/gateway.go
package middleware

import (
	"strings"

	"habit-battle-system/logger"

	"github.com/gofiber/fiber/v2"
)

// publicPrefixes are reachable without the gateway token.
var publicPrefixes = []string{"/healthz", "/auth/"}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if path == strings.TrimSuffix(p, "/") || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GatewayAuthMiddleware validates the Bearer token from the Gateway
func GatewayAuthMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		logger.Fatal("❌ [GATEWAY_AUTH] service token is not set, service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		if isPublic(c.Path()) {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.Warn("🚫 [GATEWAY_AUTH] Missing Authorization header", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		// Parse "Bearer <token>"; a raw token is accepted too
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if token != expectedToken {
			logger.Warn("❌ [GATEWAY_AUTH] Invalid token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
