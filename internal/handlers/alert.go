package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/Diker777/predictive-maintenance-system/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertAcker is the slice of the alert store the acknowledge path needs.
// GetAlert returns storage.ErrAlertNotFound for an unknown id.
type AlertAcker interface {
	GetAlert(ctx context.Context, id uuid.UUID) (models.Alert, error)
	SaveAlert(ctx context.Context, alert *models.Alert) error
}

type AlertHandler struct {
	db    *gorm.DB
	acker AlertAcker
}

func NewAlertHandler(db *gorm.DB, acker AlertAcker) *AlertHandler {
	return &AlertHandler{db: db, acker: acker}
}

// List returns alerts, optionally filtered by device and acknowledgement
// state, newest first, capped at 500.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	query := h.db.Order("created_utc DESC")

	if d := c.Query("device_id"); d != "" {
		deviceID, err := uuid.Parse(d)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   true,
				"message": "Invalid device ID",
			})
		}
		query = query.Where("device_id = ?", deviceID)
	}

	if ack := c.Query("acknowledged"); ack != "" {
		switch ack {
		case "true":
			query = query.Where("acknowledged = ?", true)
		case "false":
			query = query.Where("acknowledged = ?", false)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   true,
				"message": "acknowledged must be true or false",
			})
		}
	}

	var alerts []models.Alert
	if err := query.Limit(500).Find(&alerts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list alerts",
		})
	}

	return c.JSON(fiber.Map{"alerts": alerts})
}

// Acknowledge marks an alert acknowledged. Acknowledgement is monotonic and
// the call is idempotent: an already-acknowledged alert is returned as-is
// without another write.
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid alert ID",
		})
	}

	alert, err := h.acker.GetAlert(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, storage.ErrAlertNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "Alert not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load alert",
		})
	}

	if !alert.Acknowledged {
		now := time.Now().UTC()
		alert.Acknowledged = true
		alert.AcknowledgedAt = &now
		if err := h.acker.SaveAlert(c.UserContext(), &alert); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to acknowledge alert",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Alert acknowledged",
		"alert":   alert,
	})
}
