// handlers/friend_routes.go
package handlers

import (
	"habit-battle-system/middleware"
	"habit-battle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFriendRoutes(secured fiber.Router, friendService *services.FriendService) {
	secured.Get("/friends", func(c *fiber.Ctx) error {
		friends, err := friendService.ListFriends(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"friends": friends})
	})

	secured.Get("/friends/requests", func(c *fiber.Ctx) error {
		requests, err := friendService.ListRequests(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"requests": requests})
	})

	secured.Post("/friends/requests", func(c *fiber.Ctx) error {
		var in struct {
			FriendCode string `json:"friend_code"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		if _, err := friendService.SendRequest(c.UserContext(), middleware.UserID(c), in.FriendCode); err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "friend request sent"})
	})

	secured.Post("/friends/requests/:requesterId", func(c *fiber.Ctx) error {
		var in struct {
			Action services.FriendAction `json:"action"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		u, err := friendService.Resolve(c.UserContext(), middleware.UserID(c), c.Params("requesterId"), in.Action)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"friends": u.Friends, "friend_requests": u.FriendRequests})
	})
}
