package handlers

import (
	"log/slog"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/gofiber/fiber/v2"
)

type ClinicHandler struct {
	store *clinic.Store
}

func NewClinicHandler(store *clinic.Store) *ClinicHandler {
	return &ClinicHandler{store: store}
}

func (h *ClinicHandler) ListDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.UserContext())
	if err != nil {
		slog.Error("Failed to list doctors", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch doctors")
	}
	return c.JSON(doctors)
}

// ─── Appointments ───────────────────────────────────────────────────────────

func (h *ClinicHandler) CreateAppointment(c *fiber.Ctx) error {
	var req struct {
		DoctorID uint   `json:"doctor_id" validate:"required,min=1"`
		Time     string `json:"time" validate:"required,isotime"`
	}
	if err := c.BodyParser(&req); err != nil || tools.Validator().Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields")
	}
	at, _ := tools.ParseTime(req.Time)

	sess := middleware.CurrentSession(c)
	appt, _, err := h.store.BookAppointment(c.UserContext(), sess.UserID, req.DoctorID, at)
	if err != nil {
		if !isNotFound(err) {
			slog.Error("Failed to book appointment", "error", err)
		}
		return storeError(c, err, "Failed to book appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(appt)
}

func (h *ClinicHandler) ListAppointments(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	appts, err := h.store.ListAppointments(c.UserContext(), sess.UserID)
	if err != nil {
		slog.Error("Failed to list appointments", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch appointments")
	}
	return c.JSON(appts)
}

func (h *ClinicHandler) RescheduleAppointment(c *fiber.Ctx) error {
	var req struct {
		ID      uint   `json:"id" validate:"required,min=1"`
		NewTime string `json:"new_time" validate:"required,isotime"`
	}
	if err := c.BodyParser(&req); err != nil || tools.Validator().Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields")
	}
	at, _ := tools.ParseTime(req.NewTime)

	sess := middleware.CurrentSession(c)
	appt, err := h.store.RescheduleAppointment(c.UserContext(), sess.UserID, req.ID, at)
	if err != nil {
		return storeError(c, err, "Failed to reschedule appointment")
	}
	return c.JSON(appt)
}

func (h *ClinicHandler) CancelAppointment(c *fiber.Ctx) error {
	var req struct {
		ID uint `json:"id" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil || tools.Validator().Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing appointment id")
	}

	sess := middleware.CurrentSession(c)
	appt, err := h.store.CancelAppointment(c.UserContext(), sess.UserID, req.ID)
	if err != nil {
		return storeError(c, err, "Failed to cancel appointment")
	}
	return c.JSON(appt)
}
