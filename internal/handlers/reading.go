package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/metrics"
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/Diker777/predictive-maintenance-system/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReadingHandler struct {
	db       *gorm.DB
	ingestor *services.Ingestor
}

func NewReadingHandler(db *gorm.DB, ingestor *services.Ingestor) *ReadingHandler {
	return &ReadingHandler{db: db, ingestor: ingestor}
}

// Ingest accepts one sensor reading, runs the store/evaluate/broadcast
// pipeline and returns the reading id with the number of alerts raised.
// A failure after the reading was stored is reported separately from a
// rejected or unstorable reading.
func (h *ReadingHandler) Ingest(c *fiber.Ctx) error {
	var req struct {
		DeviceID     uuid.UUID     `json:"device_id"`
		Metric       models.Metric `json:"metric"`
		Value        float64       `json:"value"`
		TimestampUTC time.Time     `json:"timestamp_utc"`
	}

	if err := c.BodyParser(&req); err != nil {
		metrics.ReadingsIngested.WithLabelValues("http", "rejected").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if req.DeviceID == uuid.Nil {
		metrics.ReadingsIngested.WithLabelValues("http", "rejected").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Device id is required",
		})
	}

	if !req.Metric.Valid() {
		metrics.ReadingsIngested.WithLabelValues("http", "rejected").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Unknown metric",
		})
	}

	result, err := h.ingestor.Ingest(c.UserContext(), models.SensorReading{
		DeviceID:     req.DeviceID,
		Metric:       req.Metric,
		Value:        req.Value,
		TimestampUTC: req.TimestampUTC,
	})
	if err != nil {
		metrics.ReadingsIngested.WithLabelValues("http", "failed").Inc()

		var evalErr *services.EvaluationError
		if errors.As(err, &evalErr) {
			slog.Error("Alert evaluation failed", "reading_id", evalErr.ReadingID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      true,
				"message":    "Reading stored, alert evaluation failed",
				"reading_id": evalErr.ReadingID,
			})
		}

		slog.Error("Failed to store reading", "device_id", req.DeviceID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to store reading",
		})
	}

	metrics.ReadingsIngested.WithLabelValues("http", "accepted").Inc()
	return c.Status(fiber.StatusAccepted).JSON(result)
}

// Query returns readings for one device, newest first, capped at 1000.
// All filters are validated before the database is consulted; a malformed
// filter is a 400, never silently ignored.
func (h *ReadingHandler) Query(c *fiber.Ctx) error {
	deviceID, err := uuid.Parse(c.Query("device_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid device ID",
		})
	}

	var metric models.Metric
	if raw := c.Query("metric"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || !models.Metric(m).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   true,
				"message": "Unknown metric",
			})
		}
		metric = models.Metric(m)
	}

	var from, to time.Time
	if raw := c.Query("from_utc"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   true,
				"message": "Invalid from_utc, expected RFC 3339",
			})
		}
	}
	if raw := c.Query("to_utc"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   true,
				"message": "Invalid to_utc, expected RFC 3339",
			})
		}
	}

	query := h.db.Where("device_id = ?", deviceID)
	if metric.Valid() {
		query = query.Where("metric = ?", metric)
	}
	if !from.IsZero() {
		query = query.Where("timestamp_utc >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("timestamp_utc <= ?", to)
	}

	var readings []models.SensorReading
	if err := query.Order("timestamp_utc DESC").Limit(1000).Find(&readings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to query readings",
		})
	}

	return c.JSON(fiber.Map{"readings": readings})
}
