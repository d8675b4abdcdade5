package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahmetk3436/medassist/internal/llm"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/google/uuid"
)

// ─── POST /api/chat body ────────────────────────────────────────────────────

type TextPart struct {
	Type string `json:"type" validate:"required,eq=text"`
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type UserMessage struct {
	ID          string              `json:"id" validate:"required,uuid"`
	CreatedAt   time.Time           `json:"createdAt" validate:"required"`
	Role        string              `json:"role" validate:"required,eq=user"`
	Content     string              `json:"content" validate:"required,min=1,max=2000"`
	Parts       []TextPart          `json:"parts" validate:"required,min=1,dive"`
	Attachments []models.Attachment `json:"experimental_attachments" validate:"omitempty,dive"`
}

type PostRequest struct {
	ID                     string      `json:"id" validate:"required,uuid"`
	Message                UserMessage `json:"message" validate:"required"`
	SelectedChatModel      string      `json:"selectedChatModel" validate:"required,oneof=chat-model chat-model-reasoning"`
	SelectedVisibilityType string      `json:"selectedVisibilityType" validate:"required,oneof=public private"`
}

func (r *PostRequest) Validate() error {
	if err := tools.Validator().Struct(r); err != nil {
		return fmt.Errorf("validate chat request: %w", err)
	}
	return nil
}

func (r *PostRequest) chatID() uuid.UUID    { return uuid.MustParse(r.ID) }
func (r *PostRequest) messageID() uuid.UUID { return uuid.MustParse(r.Message.ID) }

func (r *PostRequest) reasoning() bool { return r.SelectedChatModel == llm.ReasoningModel }

// text joins the text parts of the user message.
func (m *UserMessage) text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

func (m *UserMessage) parts() []models.Part {
	out := make([]models.Part, 0, len(m.Parts))
	for _, p := range m.Parts {
		out = append(out, models.Part{Type: models.PartText, Text: p.Text})
	}
	return out
}

// ─── Request hints ──────────────────────────────────────────────────────────

// Hints describe where a request came from, as reported by the edge proxy.
type Hints struct {
	Latitude  string
	Longitude string
	City      string
	Country   string
}

// HintsFromHeaders reads the geolocation headers set by the edge proxy.
func HintsFromHeaders(get func(key string) string) Hints {
	return Hints{
		Latitude:  get("X-Vercel-IP-Latitude"),
		Longitude: get("X-Vercel-IP-Longitude"),
		City:      get("X-Vercel-IP-City"),
		Country:   get("X-Vercel-IP-Country"),
	}
}
