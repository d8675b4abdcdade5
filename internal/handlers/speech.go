package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ahmetk3436/medassist/internal/llm"
	"github.com/gofiber/fiber/v2"
)

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type SpeechHandler struct {
	transcriber Transcriber
}

func NewSpeechHandler(t Transcriber) *SpeechHandler {
	return &SpeechHandler{transcriber: t}
}

// Transcribe accepts a multipart upload in the "audio" field.
func (h *SpeechHandler) Transcribe(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No audio file provided")
	}
	f, err := fh.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No audio file provided")
	}
	defer f.Close()

	// The provider infers the container from the extension.
	text, err := h.transcriber.Transcribe(c.UserContext(), "audio.webm", f)
	if err != nil {
		slog.Error("Transcription failed", "size", fh.Size, "error", err)
		if errors.Is(err, llm.ErrUpstream) {
			return errorJSON(c, fiber.StatusBadGateway, "Failed to transcribe audio")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to transcribe audio")
	}
	return c.JSON(fiber.Map{"text": text})
}
