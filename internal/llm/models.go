package llm

import (
	"fmt"

	"github.com/ahmetk3436/medassist/internal/config"
)

// Model ids exposed to clients. They map to provider model names.
const (
	ChatModel      = "chat-model"
	ReasoningModel = "chat-model-reasoning"
	TitleModel     = "title-model"
)

type Catalog struct {
	providers map[string]string
}

func NewCatalog(cfg *config.Config) *Catalog {
	return &Catalog{providers: map[string]string{
		ChatModel:      cfg.LLMChatModel,
		ReasoningModel: cfg.LLMReasoningModel,
		TitleModel:     cfg.LLMTitleModel,
	}}
}

// Resolve returns the provider model name for a public model id.
func (c *Catalog) Resolve(id string) (string, error) {
	name, ok := c.providers[id]
	if !ok || name == "" {
		return "", fmt.Errorf("unknown model %q", id)
	}
	return name, nil
}

// Reasoning reports whether the model emits <think> sections. Reasoning
// models run without tools.
func (c *Catalog) Reasoning(id string) bool { return id == ReasoningModel }
