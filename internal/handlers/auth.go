package handlers

import (
	"log/slog"

	"github.com/Diker777/predictive-maintenance-system/internal/config"
	"github.com/Diker777/predictive-maintenance-system/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg          *config.Config
	passwordHash string
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	h := &AuthHandler{cfg: cfg}

	// An empty admin password or JWT secret disables login entirely
	// rather than issuing tokens anyone could obtain or forge.
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD is empty, login is disabled")
		return h
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is empty, login is disabled")
		return h
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash admin password", "error", err)
		return h
	}
	h.passwordHash = string(hash)
	return h
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if h.passwordHash == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Login is disabled",
		})
	}

	if req.Username != h.cfg.AdminUsername {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid credentials",
		})
	}

	access, refresh, err := middleware.GenerateTokens(req.Username, h.cfg.AdminRole, h.cfg.JWTSecret)
	if err != nil {
		slog.Error("Failed to generate tokens", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to generate tokens",
		})
	}

	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"user": fiber.Map{
			"username":     req.Username,
			"display_name": h.cfg.AdminDisplayName,
			"role":         h.cfg.AdminRole,
		},
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid or expired refresh token",
		})
	}

	access, refresh, err := middleware.GenerateTokens(claims.Username, claims.Role, h.cfg.JWTSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to generate tokens",
		})
	}

	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}
