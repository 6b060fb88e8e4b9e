package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/chineseneo/fuel-bot/internal/api/http"
	"github.com/chineseneo/fuel-bot/internal/app"
	"github.com/chineseneo/fuel-bot/internal/common"
	"github.com/chineseneo/fuel-bot/internal/config"
	"github.com/chineseneo/fuel-bot/internal/scheduler"
)

func main() {
	daemon := flag.Bool("daemon", false, "run the daily cycle on a schedule and serve the read API")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		common.NewLogger("info").Fatal().Err(err).Msg("failed to load config")
	}

	log := common.NewLogger(cfg.LogLevel)
	a := app.New(cfg, log)

	if !*daemon {
		// Run-once mode: one full cycle, then exit. This is how cron invokes us.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := a.RunDaily(ctx); err != nil {
			log.Fatal().Err(err).Msg("daily price cycle failed")
		}
		return
	}

	sched := scheduler.New(a, cfg.DailyAt, cfg.Location, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	fiberApp := fiber.New(fiber.Config{
		AppName:               "fuel-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "fuel-bot",
		})
	})

	httpapi.RegisterRoutes(fiberApp, a.History())

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
