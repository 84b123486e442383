package v1

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	posts "github.com/nahidhasan/feedpulse/internal/models/posts"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

const searchLimit = 20

// Search matches users by username or full name, and posts by text.
func Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Search query is required",
		})
	}

	var users []user.User
	if err := DB.WithContext(c.Context()).
		Select("id", "username", "full_name", "avatar_url").
		Where("username ILIKE ? OR full_name ILIKE ?", "%"+query+"%", "%"+query+"%").
		Limit(searchLimit).
		Find(&users).Error; err != nil {
		return utils.HandleError(c, err)
	}

	matched, err := posts.GetPosts(c.Context(), DB, searchLimit, nil, posts.TextMatching(query))
	if err != nil {
		return utils.HandleError(c, err)
	}

	userResults := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		userResults = append(userResults, fiber.Map{
			"id":         u.ID,
			"username":   u.Username,
			"full_name":  u.FullName,
			"avatar_url": u.AvatarURL,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": userResults,
		"posts": matched,
	})
}
