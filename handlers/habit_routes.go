// handlers/habit_routes.go
package handlers

import (
	"habit-battle-system/middleware"
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupHabitRoutes(secured fiber.Router, habitService *services.HabitService) {
	secured.Get("/habits", func(c *fiber.Ctx) error {
		habits, err := habitService.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"habits": habits})
	})

	// ✅ solo habit, or a battle invite when partner_id is set
	secured.Post("/habits", func(c *fiber.Ctx) error {
		var in services.CreateHabitInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		h, err := habitService.Create(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"habit": h})
	})

	secured.Put("/habits/:id", func(c *fiber.Ctx) error {
		var in services.UpdateHabitInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		h, err := habitService.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"habit": h})
	})

	secured.Delete("/habits/:id", func(c *fiber.Ctx) error {
		if err := habitService.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "habit deleted"})
	})

	secured.Post("/habits/:id/toggle", func(c *fiber.Ctx) error {
		var in struct {
			Date string `json:"date"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		res, err := habitService.Toggle(c.UserContext(), middleware.UserID(c), c.Params("id"), in.Date)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})
}
