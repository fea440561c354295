package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	placement "github.com/placement-labs/placement-backend"
)

func main() {
	cfg, err := placement.LoadConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Env == "development" {
		level = slog.LevelDebug
	}

	logger := placement.SlogLogger{L: slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited: %v", err)
		os.Exit(1)
	}
}

func run(cfg *placement.Config, logger placement.SlogLogger) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := placement.CreateSchema(ctx, db); err != nil {
		cancel()
		return err
	}
	cancel()

	repo := placement.NewRepositoryManager(db)
	tokens := placement.NewTokenService(cfg, logger)
	auther := placement.NewAuthenticator(repo, tokens, logger)

	var mailer placement.Mailer
	if cfg.SMTPHost != "" {
		mailer, err = placement.NewSMTPMailer(cfg)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("SMTP not configured, logging outgoing mail")
		mailer = placement.NewLogMailer(logger)
	}

	verifier := placement.NewVerifier(repo, mailer, logger, placement.DefaultCodeTTL)
	mw := placement.NewAuthMiddleware(repo, tokens, logger)
	controller := placement.NewAPIController(repo, auther, verifier, logger)

	app := fiber.New(fiber.Config{
		AppName:      "placement-backend",
		ErrorHandler: placement.NewErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(placement.NewRequestLogger(logger))

	controller.RegisterRoutes(app.Group(cfg.APIPrefix), mw)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	logger.Info("listening on :%s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received %s, shutting down", sig)
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
