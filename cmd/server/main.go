package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/config"
	"github.com/Diker777/predictive-maintenance-system/internal/database"
	"github.com/Diker777/predictive-maintenance-system/internal/handlers"
	"github.com/Diker777/predictive-maintenance-system/internal/mqtt"
	"github.com/Diker777/predictive-maintenance-system/internal/routes"
	"github.com/Diker777/predictive-maintenance-system/internal/services"
	"github.com/Diker777/predictive-maintenance-system/internal/storage"
	"github.com/Diker777/predictive-maintenance-system/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting predictive maintenance backend", "version", handlers.Version)

	// ─── Config ──────────────────────────────────────────────────────────
	cfg := config.Load()

	// ─── Database ────────────────────────────────────────────────────────
	if err := database.Connect(cfg); err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDemoData {
		if err := database.Seed(); err != nil {
			slog.Error("Database seed failed", "error", err)
			os.Exit(1)
		}
	}

	db := database.DB

	// ─── Ingestion pipeline ─────────────────────────────────────────────
	hub := ws.NewHub()
	store := storage.New(db)
	evaluator := services.NewEvaluator(store)
	ingestor := services.NewIngestor(store, store, evaluator, hub)

	// ─── MQTT ingest source ─────────────────────────────────────────────
	var source *mqtt.Source
	if cfg.MQTTBrokerURL != "" {
		var err error
		source, err = mqtt.NewSource(cfg, ingestor)
		if err != nil {
			slog.Error("MQTT ingest source failed", "error", err)
			os.Exit(1)
		}
	}

	// ─── Handlers ───────────────────────────────────────────────────────
	authHandler := handlers.NewAuthHandler(cfg)
	readingHandler := handlers.NewReadingHandler(db, ingestor)
	alertHandler := handlers.NewAlertHandler(db, store)
	deviceHandler := handlers.NewDeviceHandler(db)
	thresholdHandler := handlers.NewThresholdHandler(db)
	systemHandler := handlers.NewSystemHandler(db)

	// ─── Fiber App ──────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "predictive-maintenance v" + handlers.Version,
		ServerHeader: "predictive-maintenance",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" || c.Path() == "/metrics" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	// ─── Routes ─────────────────────────────────────────────────────────
	routes.Setup(app, cfg, hub, authHandler, readingHandler, alertHandler,
		deviceHandler, thresholdHandler, systemHandler)

	// ─── Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down...")

		if source != nil {
			source.Close()
		}

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}

		if sqlDB, err := database.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// ─── Start ──────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("Listening", "addr", listenAddr)

	if err := app.Listen(listenAddr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
