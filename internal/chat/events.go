package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetk3436/medassist/internal/streams"
)

type EventType string

const (
	EventStart      EventType = "start"
	EventReasoning  EventType = "reasoning"
	EventText       EventType = "text"
	EventToolCall   EventType = "tool-call"
	EventToolResult EventType = "tool-result"
	EventStepFinish EventType = "step-finish"
	EventFinish     EventType = "finish"
	EventError      EventType = "error"
)

// Event is one frame of an assistant turn.
type Event struct {
	Type       EventType       `json:"type"`
	MessageID  string          `json:"message_id,omitempty"`
	Delta      string          `json:"delta,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    *bool           `json:"is_error,omitempty"`
	Step       *int            `json:"step,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func startEvent(messageID string) Event  { return Event{Type: EventStart, MessageID: messageID} }
func finishEvent(messageID string) Event { return Event{Type: EventFinish, MessageID: messageID} }
func textEvent(delta string) Event       { return Event{Type: EventText, Delta: delta} }
func reasoningEvent(delta string) Event  { return Event{Type: EventReasoning, Delta: delta} }
func errorEvent(msg string) Event        { return Event{Type: EventError, Error: msg} }

func stepFinishEvent(step int) Event {
	return Event{Type: EventStepFinish, Step: &step}
}

func toolCallEvent(id, name string, args json.RawMessage, step int) Event {
	return Event{Type: EventToolCall, ToolCallID: id, ToolName: name, Args: args, Step: &step}
}

func toolResultEvent(id, name string, result json.RawMessage, isError bool, step int) Event {
	return Event{Type: EventToolResult, ToolCallID: id, ToolName: name, Result: result, IsError: &isError, Step: &step}
}

// Sink receives the events of a turn. Send never fails the turn; sinks deal
// with their own delivery errors.
type Sink interface {
	Send(e Event)
}

// WriteSSE writes one payload as a server-sent event frame and flushes it.
func WriteSSE(w *bufio.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// writerSink streams frames straight to the response. After the first write
// error the client is gone and later events are dropped.
type writerSink struct {
	w    *bufio.Writer
	gone bool
}

func (s *writerSink) Send(e Event) {
	if s.gone {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to encode chat event", "type", e.Type, "error", err)
		return
	}
	if err := WriteSSE(s.w, payload); err != nil {
		slog.Info("Chat client disconnected, continuing turn", "error", err)
		s.gone = true
	}
}

// storeSink appends frames to the resumable stream store.
type storeSink struct {
	store    streams.Store
	streamID string
	failed   bool
}

const publishTimeout = 5 * time.Second

func (s *storeSink) Send(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to encode chat event", "type", e.Type, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.store.Publish(ctx, s.streamID, payload); err != nil {
		slog.Error("Failed to publish chat event", "stream_id", s.streamID, "type", e.Type, "error", err)
		s.failed = true
	}
}

func (s *storeSink) complete() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.store.Complete(ctx, s.streamID); err != nil {
		slog.Error("Failed to complete chat stream", "stream_id", s.streamID, "error", err)
	}
}
