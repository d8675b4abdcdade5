package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime = time.Now()
var Version = "1.0.0"

// Pinger is satisfied by the optional stream store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	db      *gorm.DB
	streams Pinger
}

func NewSystemHandler(db *gorm.DB, streams Pinger) *SystemHandler {
	return &SystemHandler{db: db, streams: streams}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	statusCode := fiber.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		statusCode = fiber.StatusServiceUnavailable
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "unreachable: " + err.Error()
		statusCode = fiber.StatusServiceUnavailable
	}

	streamStatus := "disabled"
	if h.streams != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		streamStatus = "ok"
		if err := h.streams.Ping(ctx); err != nil {
			// Resumption is optional; a dead Redis does not fail the probe.
			streamStatus = "unreachable: " + err.Error()
		}
	}

	overall := "ok"
	if statusCode != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  overall,
		"service": "medassist",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"uptime":  time.Since(startTime).String(),
		"db":      dbStatus,
		"streams": streamStatus,
	})
}

// Info reports row counts for the main tables.
func (h *SystemHandler) Info(c *fiber.Ctx) error {
	var chats, messages, appointments, reminders int64
	h.db.Table("chats").Count(&chats)
	h.db.Table("messages").Count(&messages)
	h.db.Table("appointments").Count(&appointments)
	h.db.Table("medication_reminders").Count(&reminders)

	return c.JSON(fiber.Map{
		"version":      Version,
		"uptime":       time.Since(startTime).String(),
		"chats":        chats,
		"messages":     messages,
		"appointments": appointments,
		"reminders":    reminders,
	})
}
