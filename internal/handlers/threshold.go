package handlers

import (
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThresholdHandler struct {
	db *gorm.DB
}

func NewThresholdHandler(db *gorm.DB) *ThresholdHandler {
	return &ThresholdHandler{db: db}
}

func (h *ThresholdHandler) List(c *fiber.Ctx) error {
	query := h.db.Order("created_at")

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

	var rules []models.ThresholdRule
	if err := query.Find(&rules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list threshold rules",
		})
	}

	return c.JSON(fiber.Map{"rules": rules})
}

func (h *ThresholdHandler) Create(c *fiber.Ctx) error {
	var req struct {
		DeviceID uuid.UUID       `json:"device_id"`
		Metric   models.Metric   `json:"metric"`
		Operator models.Operator `json:"operator"`
		MinValue *float64        `json:"min_value"`
		MaxValue *float64        `json:"max_value"`
		Enabled  *bool           `json:"enabled"`
		Severity int             `json:"severity"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if req.DeviceID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Device id is required",
		})
	}
	if !req.Metric.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Unknown metric",
		})
	}
	if !req.Operator.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Unknown operator",
		})
	}
	if req.Severity < 1 || req.Severity > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Severity must be between 1 and 5",
		})
	}

	rule := models.ThresholdRule{
		ID:       uuid.New(),
		DeviceID: req.DeviceID,
		Metric:   req.Metric,
		Operator: req.Operator,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
		Enabled:  true,
		Severity: req.Severity,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.db.Create(&rule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to create threshold rule",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}
