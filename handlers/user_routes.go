// handlers/user_routes.go
package handlers

import (
	"habit-battle-system/logger"
	"habit-battle-system/middleware"
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(secured fiber.Router, userService *services.UserService, hellWeek *services.HellWeekService) {
	// Plain read first, then the explicit repair; a failed repair does not fail the read.
	secured.Get("/user", func(c *fiber.Ctx) error {
		u, err := userService.GetUser(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if _, err := userService.Repair(c.UserContext(), u); err != nil {
			logger.Warn("⚠️ [REPAIR] repair on read failed", "user_id", u.ID, "err", err)
		}
		return c.JSON(fiber.Map{"user": u})
	})

	secured.Patch("/user/monster", func(c *fiber.Ctx) error {
		var in struct {
			MonsterType string `json:"monster_type"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		u, err := userService.SetMonsterType(c.UserContext(), middleware.UserID(c), in.MonsterType)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"user": u})
	})

	secured.Post("/user/hell-week", func(c *fiber.Ctx) error {
		var in struct {
			Action services.HellWeekAction `json:"action"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		u, err := hellWeek.Apply(c.UserContext(), middleware.UserID(c), in.Action)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"user":        u,
			"platform_xp": u.PlatformXP,
			"level":       u.Level,
		})
	})
}

// SetupExportRoutes is only mounted when object storage is configured.
func SetupExportRoutes(secured fiber.Router, exportService *services.ExportService) {
	secured.Post("/user/export", func(c *fiber.Ctx) error {
		res, err := exportService.Export(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})
}
