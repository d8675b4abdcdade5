package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Chat struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string     `gorm:"type:text;not null" json:"title"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Visibility Visibility `gorm:"size:16;not null;default:private" json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is append-only; ordering within a chat is by CreatedAt.
type Message struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"chat_id"`
	Role        string         `gorm:"size:16;not null" json:"role"`
	Parts       datatypes.JSON `gorm:"not null" json:"parts"`
	Attachments datatypes.JSON `gorm:"not null" json:"attachments"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.Parts) == 0 {
		m.Parts = datatypes.JSON("[]")
	}
	if len(m.Attachments) == 0 {
		m.Attachments = datatypes.JSON("[]")
	}
	return nil
}

func (m *Message) DecodeParts() ([]Part, error) {
	var parts []Part
	if len(m.Parts) == 0 {
		return parts, nil
	}
	if err := json.Unmarshal(m.Parts, &parts); err != nil {
		return nil, fmt.Errorf("decode parts of message %s: %w", m.ID, err)
	}
	return parts, nil
}

func (m *Message) SetParts(parts []Part) error {
	if parts == nil {
		parts = []Part{}
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return err
	}
	m.Parts = datatypes.JSON(b)
	return nil
}

func (m *Message) SetAttachments(attachments []Attachment) error {
	if attachments == nil {
		attachments = []Attachment{}
	}
	b, err := json.Marshal(attachments)
	if err != nil {
		return err
	}
	m.Attachments = datatypes.JSON(b)
	return nil
}

const (
	PartText           = "text"
	PartReasoning      = "reasoning"
	PartToolInvocation = "tool-invocation"

	ToolStateCall   = "call"
	ToolStateResult = "result"
)

// Part is one typed content element of a message. The JSON shape is shared
// with the web client.
type Part struct {
	Type           string          `json:"type"`
	Text           string          `json:"text,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	ToolInvocation *ToolInvocation `json:"toolInvocation,omitempty"`
}

type ToolInvocation struct {
	State      string          `json:"state"`
	Step       int             `json:"step"`
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
	Result     json.RawMessage `json:"result,omitempty"`
}

type Attachment struct {
	URL         string `json:"url" validate:"required,url"`
	Name        string `json:"name" validate:"required,min=1,max=2000"`
	ContentType string `json:"contentType" validate:"required,oneof=image/png image/jpg image/jpeg"`
}

type Vote struct {
	ChatID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"message_id"`
	IsUpvoted bool      `gorm:"not null" json:"is_upvoted"`
}

// Stream is the resumability handle of one assistant turn.
type Stream struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (s *Stream) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
