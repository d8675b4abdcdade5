package chat

import (
	"encoding/json"
	"time"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/google/uuid"
)

// PartView is a stored part plus, for tool invocations, a one-line summary
// of the result.
type PartView struct {
	models.Part
	Summary string `json:"summary,omitempty"`
}

type MessageView struct {
	ID          uuid.UUID       `json:"id"`
	ChatID      uuid.UUID       `json:"chat_id"`
	Role        string          `json:"role"`
	Parts       []PartView      `json:"parts"`
	Attachments json.RawMessage `json:"attachments"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Views renders messages for the history endpoints.
func Views(msgs []models.Message) ([]MessageView, error) {
	out := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		parts, err := msgs[i].DecodeParts()
		if err != nil {
			return nil, err
		}
		views := make([]PartView, 0, len(parts))
		for _, p := range parts {
			views = append(views, PartView{Part: p, Summary: summarize(p)})
		}
		out = append(out, MessageView{
			ID:          msgs[i].ID,
			ChatID:      msgs[i].ChatID,
			Role:        msgs[i].Role,
			Parts:       views,
			Attachments: json.RawMessage(msgs[i].Attachments),
			CreatedAt:   msgs[i].CreatedAt,
		})
	}
	return out, nil
}

func summarize(p models.Part) string {
	inv := p.ToolInvocation
	if p.Type != models.PartToolInvocation || inv == nil {
		return ""
	}
	if inv.State != models.ToolStateResult || len(inv.Result) == 0 {
		return "Running " + inv.ToolName + "..."
	}
	res, err := tools.Decode(inv.ToolName, inv.Result)
	if err != nil {
		return inv.ToolName + " finished."
	}
	return res.Accept(tools.TextRenderer{})
}
