package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"

	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/push"
	"github.com/ahmetk3436/medassist/internal/reminders"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PushHandler struct {
	db         *gorm.DB
	dispatcher *reminders.Dispatcher
	cronSecret string
}

func NewPushHandler(db *gorm.DB, dispatcher *reminders.Dispatcher, cronSecret string) *PushHandler {
	return &PushHandler{db: db, dispatcher: dispatcher, cronSecret: cronSecret}
}

func (h *PushHandler) Subscribe(c *fiber.Ctx) error {
	var req struct {
		Subscription json.RawMessage `json:"subscription"`
	}
	if err := c.BodyParser(&req); err != nil || !push.ValidSubscription(req.Subscription) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid subscription")
	}

	sess := middleware.CurrentSession(c)
	sub := models.PushSubscription{
		UserID:       sess.UserID,
		Subscription: datatypes.JSON(req.Subscription),
	}
	if err := h.db.WithContext(c.UserContext()).Create(&sub).Error; err != nil {
		slog.Error("Failed to store push subscription", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save subscription")
	}

	if err := database.Audit(c.UserContext(), h.db, sess.UserID.String(), "push.subscribe", "", nil); err != nil {
		slog.Error("Failed to write audit log", "action", "push.subscribe", "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// SendReminders is the cron entry point. When a secret is configured the
// caller must present it in X-Cron-Secret.
func (h *PushHandler) SendReminders(c *fiber.Ctx) error {
	if h.cronSecret != "" {
		got := c.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.cronSecret)) != 1 {
			return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
		}
	}

	report, err := h.dispatcher.SendDue(c.UserContext())
	if err != nil {
		slog.Error("Failed to send reminders", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to send reminders")
	}
	return c.JSON(fiber.Map{"success": true, "report": report})
}
