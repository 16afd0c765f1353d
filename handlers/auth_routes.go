// handlers/auth_routes.go
package handlers

import (
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetupAuthRoutes registers the public routes. They are mounted before the secured
// group so they never reach the user context check.
func SetupAuthRoutes(app *fiber.App, userService *services.UserService) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var in services.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		u, err := userService.Register(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		u, err := userService.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"user": u})
	})
}
