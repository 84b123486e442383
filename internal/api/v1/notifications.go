package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/auth"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// GetNotifications lists the caller's notifications, newest first.
// Fetched notifications are marked read.
func GetNotifications(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	notifications, err := user.GetNotificationsFor(c.Context(), DB, userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	out := make([]fiber.Map, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, fiber.Map{
			"id":         n.ID,
			"kind":       n.Kind,
			"read":       n.Read,
			"created_at": n.CreatedAt,
			"from": fiber.Map{
				"id":         n.From.ID,
				"username":   n.From.Username,
				"avatar_url": n.From.AvatarURL,
			},
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notifications": out,
	})
}

// DeleteNotifications clears all of the caller's notifications.
func DeleteNotifications(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := user.DeleteNotificationsFor(c.Context(), DB, userID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Notifications deleted",
	})
}

// DeleteNotification removes a single notification owned by the caller.
func DeleteNotification(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := user.DeleteNotification(c.Context(), DB, id, userID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Notification deleted",
	})
}
