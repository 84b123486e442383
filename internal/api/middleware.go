package routes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/nahidhasan/feedpulse/internal/auth"
	"github.com/nahidhasan/feedpulse/internal/mentions"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// TagRateLimiter consumes one sliding-window slot per tag-bearing submission.
// Requests whose text carries no mention marker pass through without touching
// the store, so ordinary posting is never slowed by the tagging limit.
func TagRateLimiter(throttle *mentions.Throttle, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil || !mentions.HasMentionMarker(body.Text) {
			return c.Next()
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		if err := throttle.Allow(c.Context(), userID); err != nil {
			var rl *mentions.RateLimitedError
			if errors.As(err, &rl) {
				log.Warn(c.Context()).WithMeta(utils.Map{"user_id": userID.String()}).Logs("Tagging rate limit exceeded")
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":     rl.Error(),
					"limit":     rl.Limit,
					"remaining": rl.Remaining,
					"window":    rl.Window.String(),
				})
			}
			log.Error(c.Context()).WithMeta(utils.Map{"error": err.Error()}).Logs(fmt.Sprintf("Tag rate check failed for %s", userID))
			return utils.HandleError(c, err)
		}

		return c.Next()
	}
}
