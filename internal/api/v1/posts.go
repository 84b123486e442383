package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/auth"
	"github.com/nahidhasan/feedpulse/internal/mentions"
	posts "github.com/nahidhasan/feedpulse/internal/models/posts"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// mentionError translates pipeline errors into transport responses. Throttle
// rejections happen before any content write, so nothing is persisted when
// one of these fires.
func mentionError(c *fiber.Ctx, err error) error {
	var tooSoon *mentions.TooSoonError
	if errors.As(err, &tooSoon) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":        tooSoon.Error(),
			"wait_seconds": int(tooSoon.Remaining.Round(time.Second).Seconds()),
		})
	}

	var capErr *mentions.DailyCapError
	if errors.As(err, &capErr) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": capErr.Error(),
			"cap":   capErr.Cap,
		})
	}

	var tooMany *mentions.TooManyMentionsError
	if errors.As(err, &tooMany) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": tooMany.Error(),
			"max":   tooMany.Max,
		})
	}

	return utils.HandleError(c, err)
}

// CreatePost saves a post and runs the mention pipeline over its text.
func CreatePost(c *fiber.Ctx) error {
	type PostInput struct {
		Text  string `json:"text" validate:"omitempty,max=1000"`
		Image string `json:"image" validate:"omitempty,url,max=500"`
	}
	pi := new(PostInput)
	if err := utils.StrictBodyParser(c, pi); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Failed to parse post body: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if err := Validator.Validate(pi); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}
	if pi.Text == "" && pi.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide either text or image",
		})
	}

	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// Abuse limits run before the post row is written; a rejection here
	// aborts the whole submission.
	candidates, err := Pipeline.Precheck(c.Context(), userID, pi.Text)
	if err != nil {
		return mentionError(c, err)
	}

	post := &posts.Post{AuthorID: userID, Text: pi.Text}
	if err := posts.CreatePost(c.Context(), Redis, DB, post, posts.WithImageURL(pi.Image)); err != nil {
		Logger.Error(c.Context()).Logs(fmt.Sprintf("Failed to create post: %v", err))
		return utils.HandleError(c, err)
	}

	result, err := Pipeline.Process(c.Context(), mentions.Submission{
		AuthorID:    userID,
		Text:        pi.Text,
		ContentID:   post.ID,
		ContentKind: "post",
	}, candidates)
	if err != nil {
		// The post is persisted; mention processing is best-effort from here.
		Logger.Error(c.Context()).WithMeta(utils.Map{"post": post.ID.String()}).Logs(fmt.Sprintf("Mention processing failed: %v", err))
		return utils.HandleError(c, err)
	}

	Logger.Info(c.Context()).WithMeta(utils.Map{
		"post":     post.ID.String(),
		"mentions": fmt.Sprintf("%d", result.MentionsProcessed),
	}).Logs("Post created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post":               post,
		"mentions_processed": result.MentionsProcessed,
		"mentions":           result.Mentions,
		"warning":            result.Warning,
	})
}

// CommentOnPost attaches a comment to a post and runs the mention pipeline.
func CommentOnPost(c *fiber.Ctx) error {
	type CommentInput struct {
		Text string `json:"text" validate:"required,min=1,max=1000"`
	}
	ci := new(CommentInput)
	if err := utils.StrictBodyParser(c, ci); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if err := Validator.Validate(ci); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	candidates, err := Pipeline.Precheck(c.Context(), userID, ci.Text)
	if err != nil {
		return mentionError(c, err)
	}

	comment, err := posts.AddComment(c.Context(), Redis, DB, postID, userID, ci.Text)
	if err != nil {
		return utils.HandleError(c, err)
	}

	result, err := Pipeline.Process(c.Context(), mentions.Submission{
		AuthorID:    userID,
		Text:        ci.Text,
		ContentID:   comment.ID,
		ContentKind: "comment",
	}, candidates)
	if err != nil {
		Logger.Error(c.Context()).WithMeta(utils.Map{"comment": comment.ID.String()}).Logs(fmt.Sprintf("Mention processing failed: %v", err))
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comment":            comment,
		"mentions_processed": result.MentionsProcessed,
		"mentions":           result.Mentions,
		"warning":            result.Warning,
	})
}

// DeletePost removes the caller's own post.
func DeletePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := posts.DeletePost(c.Context(), Redis, DB, postID, userID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted successfully"})
}

// DeleteComment removes the caller's own comment from a post.
func DeleteComment(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	commentID, err := uuid.Parse(c.Params("commentID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid comment id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := posts.DeleteComment(c.Context(), Redis, DB, postID, commentID, userID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Comment deleted successfully"})
}

// LikePost toggles the caller's like on a post.
func LikePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	liked, likes, err := posts.LikePost(c.Context(), Redis, DB, postID, userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"liked": liked, "likes": likes})
}

// LikeComment toggles the caller's like on a comment.
func LikeComment(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	commentID, err := uuid.Parse(c.Params("commentID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid comment id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	liked, likes, err := posts.LikeComment(c.Context(), Redis, DB, postID, commentID, userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"liked": liked, "likes": likes})
}

// SavePost toggles a bookmark on a post.
func SavePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	saved, err := posts.SavePost(c.Context(), Redis, DB, postID, userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"saved": saved})
}

// cursorTime resolves the optional ?cursor=<post id> into the creation time
// of that post; an absent or unknown cursor starts from the newest posts.
func cursorTime(c *fiber.Ctx) *time.Time {
	raw := c.Query("cursor")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	post, err := posts.GetPostBy(c.Context(), Redis, DB, "id = ?", []interface{}{id})
	if err != nil {
		return nil
	}
	return &post.CreatedAt
}

// GetAllPosts returns the global feed newest first with cursor pagination.
func GetAllPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	feed, err := posts.GetPosts(c.Context(), DB, limit, cursorTime(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}

// GetPostByID returns a single post with author, likes, and comments.
func GetPostByID(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	post, err := posts.GetPostBy(c.Context(), Redis, DB, "id = ?", []interface{}{postID},
		"Author", "Likes", "Comments", "Comments.Author")
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// GetUserPosts returns one user's posts by username.
func GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	u, err := user.GetUserBy(c.Context(), Redis, DB, "username = ?", []interface{}{username})
	if err != nil {
		return utils.HandleError(c, err)
	}

	feed, err := posts.GetPosts(c.Context(), DB, c.QueryInt("limit", 10), cursorTime(c), posts.ByAuthor(u.ID))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}

// GetFollowingPosts returns posts authored by accounts the caller follows.
func GetFollowingPosts(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	u, err := user.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{userID}, "Following")
	if err != nil {
		return utils.HandleError(c, err)
	}

	if len(u.Following) == 0 {
		return c.Status(fiber.StatusOK).JSON([]posts.Post{})
	}

	authorIDs := make([]uuid.UUID, 0, len(u.Following))
	for _, followee := range u.Following {
		authorIDs = append(authorIDs, followee.ID)
	}

	feed, err := posts.GetPosts(c.Context(), DB, c.QueryInt("limit", 10), cursorTime(c), posts.ByAuthors(authorIDs))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}

// GetLikedPosts returns posts a user has liked.
func GetLikedPosts(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	feed, err := posts.GetPosts(c.Context(), DB, c.QueryInt("limit", 10), cursorTime(c), posts.LikedBy(targetID))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}

// GetSavedPosts returns the caller's bookmarked posts.
func GetSavedPosts(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	feed, err := posts.GetPosts(c.Context(), DB, c.QueryInt("limit", 10), cursorTime(c), posts.SavedBy(userID))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}
