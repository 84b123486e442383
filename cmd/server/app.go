package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	routes "github.com/nahidhasan/feedpulse/internal/api"
	"github.com/nahidhasan/feedpulse/internal/config"
	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/nahidhasan/feedpulse/internal/mentions"
	"github.com/nahidhasan/feedpulse/internal/models"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	log, err := logger.NewLogger(ctx)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	rclient, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
		panic(err)
	}
	defer rclient.Close(log)

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	gormDB, err := db.NewDB(ctx, dsn, models.RegisterModels(), db.WithLogger(log))
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize PostgreSQL database")
		panic("DB init failed")
	}
	defer db.CloseDB(log)

	mentionCfg := mentions.Config{
		MaxPerSubmission: cfg.Mentions.MaxPerSubmission,
		Cooldown:         cfg.Mentions.Cooldown,
		DailyCap:         cfg.Mentions.DailyCap,
		RateLimit:        cfg.Mentions.RateLimit,
		RateWindow:       cfg.Mentions.RateWindow,
		FoldCase:         cfg.Mentions.FoldCase,
		ThrottleDisabled: cfg.Mentions.ThrottleDisabled,
	}
	throttle := mentions.NewThrottle(mentions.NewRedisThrottleStore(rclient), mentionCfg)
	pipeline := mentions.NewProcessor(
		&mentions.GormDirectory{DB: gormDB},
		&mentions.GormNotifier{DB: gormDB},
		throttle,
		log,
		mentionCfg,
	)

	app := fiber.New()
	routes.NewRoutes(ctx, app, cfg, gormDB, log, rclient, pipeline)

	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}
