// handlers/notification_routes.go
package handlers

import (
	"cleanup-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService, badges *services.GormBadgeRepo) {
	user := app.Group("/user")

	user.Get("/notifications", func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		unreadOnly := c.Query("unread") == "true"
		list, err := notifications.ListForUser(userID, unreadOnly)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list notifications",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	user.Patch("/notifications/:id/read", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
		}

		ok, err := notifications.MarkRead(id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark read",
				"cause": err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.JSON(fiber.Map{"message": "Notification marked read"})
	})

	user.Post("/notifications/read-all", func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		count, err := notifications.MarkAllRead(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark all read",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"marked_read": count})
	})

	user.Get("/badges", func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		awards, err := badges.AwardsForUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, 0, len(awards))
		for _, a := range awards {
			response = append(response, fiber.Map{
				"id":          a.ID,
				"badge_id":    a.BadgeID,
				"code":        a.Badge.Code,
				"name":        a.Badge.Name,
				"description": a.Badge.Description,
				"icon_url":    a.Badge.IconURL,
				"earned_at":   a.EarnedAt,
			})
		}
		return c.JSON(response)
	})
}
