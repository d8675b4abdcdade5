package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetk3436/medassist/internal/config"
	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := tools.Validator().Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "A valid email and a password of at least 6 characters are required")
	}

	var existing int64
	h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		return errorJSON(c, fiber.StatusConflict, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create account")
	}

	user := &models.User{Email: req.Email, PasswordHash: string(hash), Type: models.UserTypeRegular}
	if err := h.db.Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create account")
	}
	h.audit(c, user, "auth.register")

	return h.issue(c.Status(fiber.StatusCreated), user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var user models.User
	err := h.db.Where("email = ? AND type = ?", strings.ToLower(strings.TrimSpace(req.Email)), models.UserTypeRegular).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Failed to load user", "error", err)
		}
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	h.audit(c, &user, "auth.login")

	return h.issue(c, &user)
}

// Guest creates a throwaway account with the guest entitlements.
func (h *AuthHandler) Guest(c *fiber.Ctx) error {
	user := &models.User{
		Email: fmt.Sprintf("guest-%d", time.Now().UnixNano()),
		Type:  models.UserTypeGuest,
	}
	if err := h.db.Create(user).Error; err != nil {
		slog.Error("Failed to create guest user", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create guest session")
	}
	h.audit(c, user, "auth.guest")

	return h.issue(c.Status(fiber.StatusCreated), user)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	claims, err := middleware.ParseToken(req.RefreshToken, h.cfg.JWTSecret)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}
	return h.issue(c, &user)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)

	var user models.User
	if err := h.db.First(&user, "id = ?", sess.UserID).Error; err != nil {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) issue(c *fiber.Ctx, user *models.User) error {
	access, refresh, err := middleware.GenerateTokens(user, h.cfg.JWTSecret)
	if err != nil {
		slog.Error("Failed to generate tokens", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to generate tokens")
	}
	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	})
}

func (h *AuthHandler) audit(c *fiber.Ctx, user *models.User, action string) {
	err := database.Audit(c.UserContext(), h.db, user.ID.String(), action, user.Email, map[string]interface{}{
		"ip":   c.IP(),
		"type": user.Type,
	})
	if err != nil {
		slog.Error("Failed to write audit log", "action", action, "error", err)
	}
}
