package handlers

import (
	"strconv"

	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditHandler struct {
	db *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{db: db}
}

// ListAuditLogs returns the caller's own activity, newest first, optionally
// filtered by action.
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "50"))
	action := c.Query("action", "")

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	sess := middleware.CurrentSession(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.AuditLog{}).
		Where("actor = ?", sess.UserID.String())
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	query.Count(&total)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error; err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list audit logs")
	}

	return c.JSON(fiber.Map{
		"logs":     logs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
