package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	v1 "github.com/nahidhasan/feedpulse/internal/api/v1"
	"github.com/nahidhasan/feedpulse/internal/auth"
	"github.com/nahidhasan/feedpulse/internal/config"
	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/nahidhasan/feedpulse/internal/mentions"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"gorm.io/gorm"
)

func NewRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, gormDB *gorm.DB, log *logger.Logger, rclient *db.RedisClient, pipeline *mentions.Processor) {
	app.Use(
		logger.SetupLogger(log),
		recover.New(),
		cors.New(
			cors.Config{
				AllowOrigins:     "http://localhost:3000",
				AllowCredentials: true,
				AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			},
		),
		compress.New(
			compress.Config{
				Level: compress.LevelBestCompression,
			},
		),
		limiter.New(
			limiter.Config{
				Expiration: 1 * time.Minute,
				Max:        100,
				KeyGenerator: func(c *fiber.Ctx) string {
					return c.IP()
				},
			},
		),
	)
	app.Use(log.Middleware())

	v1.Setup(gormDB, rclient, log, pipeline)

	protected := auth.Protected(auth.Options{Rclient: rclient, Logger: log})
	tagLimiter := TagRateLimiter(pipeline.Throttle, log)

	api := app.Group("/api/v1")

	api.Post("/auth/register", v1.Register)
	api.Post("/auth/login", v1.Login)
	api.Post("/auth/logout", protected, v1.Logout)

	api.Get("/users/:username", v1.GetProfile)
	api.Put("/me", protected, v1.UpdateProfile)
	api.Post("/users/:id/follow", protected, v1.FollowUser)

	api.Get("/posts", v1.GetAllPosts)
	api.Post("/posts", protected, tagLimiter, v1.CreatePost)
	api.Get("/posts/:id", v1.GetPostByID)
	api.Delete("/posts/:id", protected, v1.DeletePost)
	api.Post("/posts/:id/like", protected, v1.LikePost)
	api.Post("/posts/:id/save", protected, v1.SavePost)
	api.Post("/posts/:id/comments", protected, tagLimiter, v1.CommentOnPost)
	api.Delete("/posts/:id/comments/:commentID", protected, v1.DeleteComment)
	api.Post("/posts/:id/comments/:commentID/like", protected, v1.LikeComment)

	api.Get("/feed/following", protected, v1.GetFollowingPosts)
	api.Get("/users/:username/posts", v1.GetUserPosts)
	api.Get("/users/:id/likes", v1.GetLikedPosts)
	api.Get("/me/saved", protected, v1.GetSavedPosts)

	api.Get("/notifications", protected, v1.GetNotifications)
	api.Delete("/notifications", protected, v1.DeleteNotifications)
	api.Delete("/notifications/:id", protected, v1.DeleteNotification)

	api.Get("/search", v1.Search)

	go func() {
		<-ctx.Done()
		rclient.Close(log)
		log.Close()
	}()
}
