package handlers

import (
	"bufio"
	"context"
	"log/slog"
	"strconv"

	"github.com/ahmetk3436/medassist/internal/chat"
	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/middleware"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
)

type ChatHandler struct {
	svc *chat.Service
	db  *gorm.DB
}

func NewChatHandler(svc *chat.Service, db *gorm.DB) *ChatHandler {
	return &ChatHandler{svc: svc, db: db}
}

func setSSEHeaders(c *fiber.Ctx) {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}

// ─── POST /api/chat ─────────────────────────────────────────────────────────

func (h *ChatHandler) Post(c *fiber.Ctx) error {
	var req chat.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sess := middleware.CurrentSession(c)
	if sess == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	hints := chat.HintsFromHeaders(func(key string) string { return c.Get(key) })
	turn, err := h.svc.Prepare(c.UserContext(), sess, &req, hints)
	if err != nil {
		if _, known := chatStatus(err); !known {
			slog.Error("Failed to prepare chat turn", "chat_id", req.ID, "error", err)
		}
		return chatError(c, err)
	}

	setSSEHeaders(c)
	c.Set("X-Stream-Id", turn.StreamID.String())
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		h.svc.Stream(turn, w)
	}))
	return nil
}

// ─── GET /api/chat (resume) ─────────────────────────────────────────────────

// resumeTarget runs the resume checks in order. When ok is false the response
// has already been written and err is what the handler should return.
func (h *ChatHandler) resumeTarget(c *fiber.Ctx) (streamID uuid.UUID, ok bool, err error) {
	if !h.svc.ResumeEnabled() {
		return uuid.Nil, false, c.SendStatus(fiber.StatusNoContent)
	}
	chatID := c.Query("chatId")
	if chatID == "" {
		return uuid.Nil, false, errorJSON(c, fiber.StatusBadRequest, "id is required")
	}
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return uuid.Nil, false, errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, perr := uuid.Parse(chatID)
	if perr != nil {
		return uuid.Nil, false, errorJSON(c, fiber.StatusNotFound, "Not found")
	}
	streamID, err = h.svc.ResumeTarget(c.UserContext(), sess, id)
	if err != nil {
		return uuid.Nil, false, chatError(c, err)
	}
	return streamID, true, nil
}

func (h *ChatHandler) Resume(c *fiber.Ctx) error {
	streamID, ok, err := h.resumeTarget(c)
	if !ok {
		return err
	}

	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		err := h.svc.Tail(context.Background(), streamID.String(), func(payload []byte) error {
			return chat.WriteSSE(w, payload)
		})
		if err != nil {
			slog.Info("Resume client went away", "stream_id", streamID, "error", err)
		}
	}))
	return nil
}

// ─── DELETE /api/chat ───────────────────────────────────────────────────────

func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	raw := c.Query("id")
	if raw == "" {
		return errorJSON(c, fiber.StatusNotFound, "Not Found")
	}
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Not Found")
	}

	deleted, err := h.svc.Delete(c.UserContext(), sess, id)
	if err != nil {
		if _, known := chatStatus(err); !known {
			slog.Error("Failed to delete chat", "chat_id", id, "error", err)
		}
		return chatError(c, err)
	}

	if err := database.Audit(c.UserContext(), h.db, sess.UserID.String(), "chat.delete", id.String(), nil); err != nil {
		slog.Error("Failed to write audit log", "action", "chat.delete", "error", err)
	}
	return c.JSON(deleted)
}

// ─── History & messages ─────────────────────────────────────────────────────

func (h *ChatHandler) History(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	sess := middleware.CurrentSession(c)
	chats, total, err := h.svc.Repo().ListChats(c.UserContext(), sess.UserID, page, perPage)
	if err != nil {
		slog.Error("Failed to list chats", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list chats")
	}

	return c.JSON(fiber.Map{
		"chats":    chats,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	}

	msgs, err := h.svc.Messages(c.UserContext(), middleware.CurrentSession(c), id)
	if err != nil {
		return chatError(c, err)
	}
	views, err := chat.Views(msgs)
	if err != nil {
		slog.Error("Failed to render messages", "chat_id", id, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load messages")
	}
	return c.JSON(fiber.Map{"messages": views})
}

func (h *ChatHandler) SetVisibility(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	}
	var req struct {
		Visibility string `json:"visibility" validate:"required,oneof=public private"`
	}
	if err := c.BodyParser(&req); err != nil || tools.Validator().Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "visibility must be public or private")
	}

	updated, err := h.svc.SetVisibility(c.UserContext(), middleware.CurrentSession(c), id, models.Visibility(req.Visibility))
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(updated)
}

// ─── Votes ──────────────────────────────────────────────────────────────────

func (h *ChatHandler) Votes(c *fiber.Ctx) error {
	raw := c.Query("chatId")
	if raw == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Parameter chatId is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	}

	votes, err := h.svc.Votes(c.UserContext(), middleware.CurrentSession(c), id)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(votes)
}

func (h *ChatHandler) Vote(c *fiber.Ctx) error {
	var req struct {
		ChatID    string `json:"chat_id" validate:"required,uuid"`
		MessageID string `json:"message_id" validate:"required,uuid"`
		Type      string `json:"type" validate:"required,oneof=up down"`
	}
	if err := c.BodyParser(&req); err != nil || tools.Validator().Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "chat_id, message_id and type are required")
	}

	err := h.svc.Vote(c.UserContext(), middleware.CurrentSession(c),
		uuid.MustParse(req.ChatID), uuid.MustParse(req.MessageID), req.Type == "up")
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message voted"})
}
