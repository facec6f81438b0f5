package routes

import (
	"github.com/Diker777/predictive-maintenance-system/internal/config"
	"github.com/Diker777/predictive-maintenance-system/internal/handlers"
	"github.com/Diker777/predictive-maintenance-system/internal/middleware"
	"github.com/Diker777/predictive-maintenance-system/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	hub *ws.Hub,
	authHandler *handlers.AuthHandler,
	readingHandler *handlers.ReadingHandler,
	alertHandler *handlers.AlertHandler,
	deviceHandler *handlers.DeviceHandler,
	thresholdHandler *handlers.ThresholdHandler,
	systemHandler *handlers.SystemHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", systemHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/refresh", authHandler.Refresh)

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	// Readings
	api.Post("/readings", readingHandler.Ingest)
	api.Get("/readings", readingHandler.Query)

	// Devices
	api.Get("/devices", deviceHandler.List)
	api.Post("/devices", deviceHandler.Create)
	api.Get("/devices/:id", deviceHandler.Get)

	// Threshold rules
	api.Get("/thresholds", thresholdHandler.List)
	api.Post("/thresholds", thresholdHandler.Create)

	// Alerts
	api.Get("/alerts", alertHandler.List)
	api.Post("/alerts/ack/:id", alertHandler.Acknowledge)

	// Real-time alert subscription (WebSocket)
	api.Use("/ws/alerts", ws.UpgradeCheck())
	api.Get("/ws/alerts", hub.Handler())
}
