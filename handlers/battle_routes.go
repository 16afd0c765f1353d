// handlers/battle_routes.go
package handlers

import (
	"habit-battle-system/middleware"
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(secured fiber.Router, battleService *services.BattleService) {
	// Listing sweeps the caller's expired battles first.
	secured.Get("/battles", func(c *fiber.Ctx) error {
		battles, err := battleService.ListBattles(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"battles": battles})
	})

	secured.Get("/battles/requests", func(c *fiber.Ctx) error {
		requests, err := battleService.ListRequests(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"requests": requests})
	})

	secured.Post("/battles/:id/respond", func(c *fiber.Ctx) error {
		var in struct {
			Action services.BattleResponse `json:"action"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		h, err := battleService.Respond(c.UserContext(), middleware.UserID(c), c.Params("id"), in.Action)
		if err != nil {
			return respondError(c, err)
		}
		if h == nil {
			return c.JSON(fiber.Map{"message": "battle rejected"})
		}
		return c.JSON(fiber.Map{"habit": h})
	})

	secured.Post("/battles/:id/cancel", func(c *fiber.Ctx) error {
		if err := battleService.Cancel(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "battle cancelled"})
	})

	secured.Post("/battles/:id/surrender", func(c *fiber.Ctx) error {
		res, err := battleService.Surrender(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})
}
