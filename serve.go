package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"questboard/database"
	"questboard/events"
	"questboard/handlers"
	"questboard/middleware"
	"questboard/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterCleanupPeriod = 10 * time.Minute
)

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	tokens := services.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := events.NewHub(log.Named("events"))
	cleanup := services.NewCleanupService(db, log.Named("cleanup"), cfg.Archiver.Interval)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction()),
		BodyLimit:    4 * 1024 * 1024, // 4MB
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	var authLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		general := middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		general.StartCleanup(limiterCleanupPeriod)
		defer general.Stop()
		app.Use(middleware.RateLimit(general, "Rate limit exceeded. Please try again later."))

		authLimiter = middleware.NewRateLimiter(cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindow)
		authLimiter.StartCleanup(limiterCleanupPeriod)
		defer authLimiter.Stop()
	}

	handlers.New(db, tokens, hub, cleanup, log).Mount(app, authLimiter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("db_driver", cfg.Database.Driver))
		return app.Listen(":" + cfg.Port)
	})

	if cfg.Archiver.Enabled {
		g.Go(func() error {
			cleanup.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		hub.Close()
		cleanup.Stop()
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Server stopped")
	return nil
}
