package handlers

import (
	"errors"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxDeviceNameLength = 120

type DeviceHandler struct {
	db *gorm.DB
}

func NewDeviceHandler(db *gorm.DB) *DeviceHandler {
	return &DeviceHandler{db: db}
}

func (h *DeviceHandler) List(c *fiber.Ctx) error {
	var devices []models.Device
	if err := h.db.Order("created_at").Find(&devices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list devices",
		})
	}
	return c.JSON(fiber.Map{"devices": devices})
}

func (h *DeviceHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Metadata    datatypes.JSON `json:"metadata"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if req.Name == "" || len(req.Name) > maxDeviceNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Name is required and must be at most 120 characters",
		})
	}

	device := models.Device{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}

	if err := h.db.Create(&device).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to create device",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(device)
}

func (h *DeviceHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid device ID",
		})
	}

	var device models.Device
	if err := h.db.First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "Device not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load device",
		})
	}

	return c.JSON(device)
}
