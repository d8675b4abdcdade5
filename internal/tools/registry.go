package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/sashabaranov/go-openai"
)

// Registry manages the tools offered to the model.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	if _, dup := r.tools[t.Name()]; !dup {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns the OpenAI tool definitions of the active tools. A nil
// active list selects every tool; an empty one selects none.
func (r *Registry) Definitions(active []string) []openai.Tool {
	names := r.order
	if active != nil {
		names = active
	}
	defs := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			defs = append(defs, t.Definition())
		}
	}
	return defs
}

// Execute runs a tool by name with the raw JSON arguments from the model.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return t.Call(ctx, args)
}

// Catalog wires the full tool set against the clinic store.
func Catalog(store *clinic.Store) *Registry {
	r := NewRegistry()
	for _, group := range [][]Tool{
		doctorTools(store),
		appointmentTools(store),
		ambulanceTools(store),
		labTools(store),
		medicationTools(store),
		prescriptionTools(store),
		{symptomTool(), interactionTool(), emergencyTool()},
	} {
		for _, t := range group {
			r.Register(t)
		}
	}
	return r
}
