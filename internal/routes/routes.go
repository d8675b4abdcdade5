package routes

import (
	"github.com/ahmetk3436/medassist/internal/config"
	"github.com/ahmetk3436/medassist/internal/handlers"
	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Chat   *handlers.ChatHandler
	Clinic *handlers.ClinicHandler
	Speech *handlers.SpeechHandler
	Push   *handlers.PushHandler
	Audit  *handlers.AuditHandler
	System *handlers.SystemHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", h.System.Health)

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/register", h.Auth.Register)
	app.Post("/api/auth/login", h.Auth.Login)
	app.Post("/api/auth/guest", h.Auth.Guest)
	app.Post("/api/auth/refresh", h.Auth.Refresh)

	// Cron entry point, guarded by X-Cron-Secret instead of a session
	app.Post("/api/push/send-reminders", h.Push.SendReminders)

	// ─── Chat (session optional; handlers answer 401 themselves) ─────────
	chat := app.Group("/api/chat", middleware.OptionalSession(cfg.JWTSecret))
	chat.Post("", h.Chat.Post)
	chat.Get("", h.Chat.Resume)
	chat.Delete("", h.Chat.Delete)
	chat.Get("/ws", h.Chat.ResumeUpgrade(), h.Chat.ResumeWS())

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	api.Get("/auth/me", h.Auth.Me)

	// Chats
	api.Get("/chat/:id/messages", h.Chat.Messages)
	api.Patch("/chat/:id/visibility", h.Chat.SetVisibility)
	api.Get("/history", h.Chat.History)
	api.Get("/vote", h.Chat.Votes)
	api.Patch("/vote", h.Chat.Vote)

	// Clinic
	api.Get("/doctors", h.Clinic.ListDoctors)
	api.Post("/appointments", h.Clinic.CreateAppointment)
	api.Get("/appointments", h.Clinic.ListAppointments)
	api.Patch("/appointments", h.Clinic.RescheduleAppointment)
	api.Delete("/appointments", h.Clinic.CancelAppointment)

	// Voice
	api.Post("/speech-to-text", h.Speech.Transcribe)

	// Push
	api.Post("/push/subscribe", h.Push.Subscribe)

	// Audit & system
	api.Get("/audit", h.Audit.ListAuditLogs)
	api.Get("/system/info", h.System.Info)
}
