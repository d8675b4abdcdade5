package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/sashabaranov/go-openai"
)

// toProvider converts stored messages into provider messages. Assistant
// messages expand into one assistant message per step followed by the tool
// results of that step. Invocations that never got a result are dropped.
func toProvider(msgs []models.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for i := range msgs {
		parts, err := msgs[i].DecodeParts()
		if err != nil {
			return nil, err
		}
		switch msgs[i].Role {
		case models.RoleUser:
			m, err := userMessage(&msgs[i], parts)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		case models.RoleAssistant:
			out = append(out, assistantMessages(parts)...)
		case models.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: joinText(parts)})
		}
	}
	return out, nil
}

func joinText(parts []models.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Type == models.PartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func userMessage(m *models.Message, parts []models.Part) (openai.ChatCompletionMessage, error) {
	var attachments []models.Attachment
	if len(m.Attachments) > 0 {
		if err := json.Unmarshal(m.Attachments, &attachments); err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("decode attachments of message %s: %w", m.ID, err)
		}
	}
	text := joinText(parts)
	if len(attachments) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}, nil
	}

	multi := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: text}}
	for _, a := range attachments {
		multi = append(multi, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: a.URL},
		})
	}
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: multi}, nil
}

func assistantMessages(parts []models.Part) []openai.ChatCompletionMessage {
	var (
		out     []openai.ChatCompletionMessage
		cur     *openai.ChatCompletionMessage
		results []openai.ChatCompletionMessage
	)
	flush := func() {
		if cur != nil && (cur.Content != "" || len(cur.ToolCalls) > 0) {
			out = append(out, *cur)
			out = append(out, results...)
		}
		cur, results = nil, nil
	}
	open := func() {
		if cur == nil {
			cur = &openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
		}
	}

	for _, p := range parts {
		switch p.Type {
		case models.PartText:
			// text after tool calls belongs to the next step
			if cur != nil && len(cur.ToolCalls) > 0 {
				flush()
			}
			open()
			cur.Content += p.Text
		case models.PartToolInvocation:
			inv := p.ToolInvocation
			if inv == nil || inv.State != models.ToolStateResult {
				continue
			}
			open()
			cur.ToolCalls = append(cur.ToolCalls, openai.ToolCall{
				ID:   inv.ToolCallID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      inv.ToolName,
					Arguments: string(inv.Args),
				},
			})
			results = append(results, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Name:       inv.ToolName,
				ToolCallID: inv.ToolCallID,
				Content:    string(inv.Result),
			})
		}
	}
	flush()
	return out
}
