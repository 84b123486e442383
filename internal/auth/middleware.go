package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/nahidhasan/feedpulse/pkg/logger"
)

type Options struct {
	Rclient *db.RedisClient
	Logger  *logger.Logger
}

// Protected verifies the access token cookie, rejects blacklisted tokens,
// and stores the authenticated user id in locals for downstream handlers.
func Protected(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if opt.Rclient.Exists(c.Context(), "blacklist:access:"+accessToken).Val() > 0 {
			opt.Logger.Warn(c.Context()).Logs("Attempted use of blacklisted access token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Access token has been invalidated",
			})
		}

		claims, err := VerifyToken(accessToken)
		if err != nil {
			opt.Logger.Warn(c.Context()).WithMeta(map[string]string{"error": err.Error()}).Logs("Access token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired access token",
			})
		}

		if _, err := uuid.Parse(claims.UserID); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid access token",
			})
		}

		c.Locals("user_id", claims.UserID)
		ctx := logger.SetupRoutesContext(c)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// UserID returns the authenticated user's id set by Protected.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrInvalidToken
	}
	return uuid.Parse(raw)
}
