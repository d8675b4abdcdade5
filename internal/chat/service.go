// Package chat drives one assistant turn: it checks the caller's quota,
// persists the user message, runs the model for a bounded number of steps
// while executing tool calls, and streams the result back.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetk3436/medassist/internal/llm"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/session"
	"github.com/ahmetk3436/medassist/internal/streams"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

const (
	upstreamErrorMessage = "Oops, an error occurred!"
	titleMaxLen          = 80
	rateWindow           = 24 * time.Hour
)

type Options struct {
	MaxSteps    int
	MaxDuration time.Duration
	WordDelay   time.Duration
}

type Service struct {
	repo     *Repo
	registry *tools.Registry
	client   llm.Client
	models   *llm.Catalog
	streams  streams.Store
	opts     Options
	now      func() time.Time
}

// NewService wires the orchestrator. A nil stream store disables resume.
func NewService(repo *Repo, registry *tools.Registry, client llm.Client, catalog *llm.Catalog, store streams.Store, opts Options) *Service {
	if opts.MaxSteps < 1 {
		opts.MaxSteps = 5
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 60 * time.Second
	}
	return &Service{
		repo:     repo,
		registry: registry,
		client:   client,
		models:   catalog,
		streams:  store,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) Repo() *Repo { return s.repo }

func (s *Service) ResumeEnabled() bool { return s.streams != nil }

// Turn is an accepted request whose user message is already persisted.
type Turn struct {
	ChatID    uuid.UUID
	StreamID  uuid.UUID
	MessageID uuid.UUID

	modelID string
	system  string
	history []openai.ChatCompletionMessage
	sess    session.Session
}

// ─── Prepare ────────────────────────────────────────────────────────────────

// Prepare runs everything that can still fail with a status code: quota,
// chat ownership, persistence of the user message and the stream handle.
func (s *Service) Prepare(ctx context.Context, sess *session.Session, req *PostRequest, hints Hints) (*Turn, error) {
	count, err := s.repo.CountUserMessages(ctx, sess.UserID, s.now().Add(-rateWindow))
	if err != nil {
		return nil, err
	}
	if count >= int64(session.EntitlementsFor(sess.Type).MaxMessagesPerDay) {
		return nil, ErrRateLimited
	}

	chatID := req.chatID()
	chat, err := s.repo.GetChat(ctx, chatID)
	switch {
	case errors.Is(err, ErrNotFound):
		chat = &models.Chat{
			ID:         chatID,
			UserID:     sess.UserID,
			Title:      s.title(ctx, req.Message.text()),
			Visibility: models.Visibility(req.SelectedVisibilityType),
		}
		if err := s.repo.CreateChat(ctx, chat); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case chat.UserID != sess.UserID:
		return nil, ErrForbidden
	}

	msg := &models.Message{ID: req.messageID(), ChatID: chatID, Role: models.RoleUser}
	if err := msg.SetParts(req.Message.parts()); err != nil {
		return nil, fmt.Errorf("encode user parts: %w", err)
	}
	if err := msg.SetAttachments(req.Message.Attachments); err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}
	if err := s.repo.SaveMessages(ctx, msg); err != nil {
		return nil, err
	}

	stored, err := s.repo.Messages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	history, err := toProvider(stored)
	if err != nil {
		return nil, err
	}

	stream, err := s.repo.CreateStream(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return &Turn{
		ChatID:    chatID,
		StreamID:  stream.ID,
		MessageID: uuid.New(),
		modelID:   req.SelectedChatModel,
		system:    SystemPrompt(req.SelectedChatModel, hints),
		history:   history,
		sess:      *sess,
	}, nil
}

func (s *Service) title(ctx context.Context, text string) string {
	fallback := truncateRunes(strings.TrimSpace(text), titleMaxLen)

	model, err := s.models.Resolve(llm.TitleModel)
	if err != nil {
		return fallback
	}
	out, err := s.client.Complete(ctx, model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: titlePrompt},
		{Role: openai.ChatMessageRoleUser, Content: text},
	})
	if err != nil {
		slog.Warn("Title generation failed, using message text", "error", err)
		return fallback
	}
	title := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "", ":", "").Replace(out))
	if title == "" {
		return fallback
	}
	return truncateRunes(title, titleMaxLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ─── Stream ─────────────────────────────────────────────────────────────────

// Stream drives the turn and writes its SSE frames to w. With a stream store
// the turn runs detached and w tails the store, so a disconnect only ends the
// tail.
func (s *Service) Stream(t *Turn, w *bufio.Writer) {
	if s.streams == nil {
		s.Run(context.Background(), t, &writerSink{w: w})
		return
	}

	sink := &storeSink{store: s.streams, streamID: t.StreamID.String()}
	sink.Send(startEvent(t.MessageID.String()))
	if sink.failed {
		// nothing to tail; fall back to direct delivery
		s.Run(context.Background(), t, &writerSink{w: w})
		return
	}

	go func() {
		s.drive(context.Background(), t, sink)
		sink.complete()
	}()

	err := s.Tail(context.Background(), t.StreamID.String(), func(payload []byte) error {
		return WriteSSE(w, payload)
	})
	if err != nil {
		slog.Info("Stopped tailing chat stream", "stream_id", t.StreamID, "error", err)
	}
}

// Tail replays a stored stream from its start and follows it to the end,
// handing each frame to send. It returns the first send error.
func (s *Service) Tail(ctx context.Context, streamID string, send func(payload []byte) error) error {
	if s.streams == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := s.streams.Subscribe(ctx, streamID)
	if err != nil {
		return err
	}
	for payload := range ch {
		if err := send(payload); err != nil {
			return err
		}
	}
	return nil
}

// Run emits the whole turn, start marker included, to sink.
func (s *Service) Run(ctx context.Context, t *Turn, sink Sink) {
	sink.Send(startEvent(t.MessageID.String()))
	s.drive(ctx, t, sink)
}

// drive runs the step loop on a context detached from ctx's cancellation and
// bounded by the turn ceiling.
func (s *Service) drive(ctx context.Context, t *Turn, sink Sink) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.MaxDuration)
	defer cancel()
	ctx = session.WithContext(ctx, &t.sess)

	model, err := s.models.Resolve(t.modelID)
	if err != nil {
		slog.Error("Chat model not configured", "model", t.modelID, "error", err)
		sink.Send(errorEvent(upstreamErrorMessage))
		return
	}

	reasoning := s.models.Reasoning(t.modelID)
	var defs []openai.Tool
	if !reasoning {
		defs = s.registry.Definitions(nil)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(t.history)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: t.system})
	messages = append(messages, t.history...)

	var parts []models.Part
	for step := 0; step < s.opts.MaxSteps; step++ {
		out, err := s.step(ctx, step, llm.Request{Model: model, Messages: messages, Tools: defs}, reasoning, sink)
		if err != nil {
			slog.Error("Chat step failed", "chat_id", t.ChatID, "step", step, "error", err)
			sink.Send(errorEvent(upstreamErrorMessage))
			return
		}
		parts = append(parts, out.parts...)
		sink.Send(stepFinishEvent(step))

		if len(out.calls) == 0 {
			break
		}
		messages = append(messages, out.assistant)
		messages = append(messages, out.results...)
	}

	s.persistAssistant(t, parts)
	sink.Send(finishEvent(t.MessageID.String()))
}

func (s *Service) persistAssistant(t *Turn, parts []models.Part) {
	msg := &models.Message{ID: t.MessageID, ChatID: t.ChatID, Role: models.RoleAssistant}
	if err := msg.SetParts(parts); err != nil {
		slog.Error("Failed to encode assistant message", "chat_id", t.ChatID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.SaveMessages(ctx, msg); err != nil {
		slog.Error("Failed to save chat", "chat_id", t.ChatID, "message_id", t.MessageID, "error", err)
	}
}

// ─── Step ───────────────────────────────────────────────────────────────────

type stepOutput struct {
	parts     []models.Part
	calls     []openai.ToolCall
	assistant openai.ChatCompletionMessage
	results   []openai.ChatCompletionMessage
}

// step streams one model call, then executes the tool calls it produced.
func (s *Service) step(ctx context.Context, step int, req llm.Request, reasoning bool, sink Sink) (*stepOutput, error) {
	stream, err := s.client.StreamChat(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var (
		splitter  llm.ThinkSplitter
		chunker   llm.WordChunker
		text      strings.Builder
		thoughts  strings.Builder
		calls     = map[int]*openai.ToolCall{}
		callOrder []int
	)

	emitText := func(delta string) {
		text.WriteString(delta)
		for _, word := range chunker.Push(delta) {
			sink.Send(textEvent(word))
			s.pause()
		}
	}
	emit := func(segs []llm.Segment) {
		for _, seg := range segs {
			if seg.Reasoning {
				thoughts.WriteString(seg.Text)
				sink.Send(reasoningEvent(seg.Text))
				continue
			}
			emitText(seg.Text)
		}
	}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if chunk.Content != "" {
			if reasoning {
				emit(splitter.Feed(chunk.Content))
			} else {
				emitText(chunk.Content)
			}
		}

		for _, tc := range chunk.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			acc, ok := calls[idx]
			if !ok {
				acc = &openai.ToolCall{Type: openai.ToolTypeFunction}
				calls[idx] = acc
				callOrder = append(callOrder, idx)
			}
			if tc.ID != "" {
				acc.ID = tc.ID
			}
			if acc.Function.Name == "" {
				acc.Function.Name = tc.Function.Name
			}
			acc.Function.Arguments += tc.Function.Arguments
		}
	}
	if reasoning {
		emit(splitter.Flush())
	}
	if rest := chunker.Flush(); rest != "" {
		sink.Send(textEvent(rest))
	}

	out := &stepOutput{}
	if thoughts.Len() > 0 {
		out.parts = append(out.parts, models.Part{Type: models.PartReasoning, Reasoning: thoughts.String()})
	}
	if text.Len() > 0 {
		out.parts = append(out.parts, models.Part{Type: models.PartText, Text: text.String()})
	}

	sort.Ints(callOrder)
	for _, idx := range callOrder {
		call := *calls[idx]
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		out.calls = append(out.calls, call)

		args := rawArgs(call.Function.Arguments)
		sink.Send(toolCallEvent(call.ID, call.Function.Name, args, step))

		result, isError := s.execute(ctx, call.Function.Name, args)
		sink.Send(toolResultEvent(call.ID, call.Function.Name, result, isError, step))

		out.parts = append(out.parts, models.Part{
			Type: models.PartToolInvocation,
			ToolInvocation: &models.ToolInvocation{
				State:      models.ToolStateResult,
				Step:       step,
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
				Args:       args,
				Result:     result,
			},
		})
		out.results = append(out.results, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
			Content:    string(result),
		})
	}
	out.assistant = openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   text.String(),
		ToolCalls: out.calls,
	}
	return out, nil
}

// execute runs one tool call. Failures become an {"error": ...} payload that
// goes back to the model like any other result.
func (s *Service) execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, bool) {
	res, err := s.registry.Execute(ctx, name, args)
	if err == nil {
		payload, merr := json.Marshal(res)
		if merr == nil {
			return payload, false
		}
		err = fmt.Errorf("encode %s result: %w", name, merr)
	}
	slog.Warn("Tool call failed", "tool", name, "error", err)
	payload, _ := json.Marshal(tools.ToolError{Error: err.Error()})
	return payload, true
}

// rawArgs keeps the model's arguments as JSON. Malformed text is carried as
// a JSON string so it can still be recorded and rejected by the tool.
func rawArgs(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}

func (s *Service) pause() {
	if s.opts.WordDelay > 0 {
		time.Sleep(s.opts.WordDelay)
	}
}

// ─── Resume, delete, read ───────────────────────────────────────────────────

// ResumeTarget returns the most recent stream of a chat the caller may read.
func (s *Service) ResumeTarget(ctx context.Context, sess *session.Session, chatID uuid.UUID) (uuid.UUID, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return uuid.Nil, err
	}
	if chat.Visibility == models.VisibilityPrivate && chat.UserID != sess.UserID {
		return uuid.Nil, ErrForbidden
	}
	stream, err := s.repo.LatestStream(ctx, chatID)
	if err != nil {
		return uuid.Nil, err
	}
	return stream.ID, nil
}

func (s *Service) Delete(ctx context.Context, sess *session.Session, chatID uuid.UUID) (*models.Chat, error) {
	if _, err := s.owned(ctx, sess, chatID); err != nil {
		return nil, err
	}
	return s.repo.DeleteChat(ctx, chatID)
}

// Messages returns a chat's messages. Public chats are readable by anyone
// signed in.
func (s *Service) Messages(ctx context.Context, sess *session.Session, chatID uuid.UUID) ([]models.Message, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Visibility != models.VisibilityPublic && chat.UserID != sess.UserID {
		return nil, ErrForbidden
	}
	return s.repo.Messages(ctx, chatID)
}

func (s *Service) SetVisibility(ctx context.Context, sess *session.Session, chatID uuid.UUID, v models.Visibility) (*models.Chat, error) {
	chat, err := s.owned(ctx, sess, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetVisibility(ctx, chatID, v); err != nil {
		return nil, err
	}
	chat.Visibility = v
	return chat, nil
}

func (s *Service) Votes(ctx context.Context, sess *session.Session, chatID uuid.UUID) ([]models.Vote, error) {
	if _, err := s.owned(ctx, sess, chatID); err != nil {
		return nil, err
	}
	return s.repo.Votes(ctx, chatID)
}

func (s *Service) Vote(ctx context.Context, sess *session.Session, chatID, messageID uuid.UUID, up bool) error {
	if _, err := s.owned(ctx, sess, chatID); err != nil {
		return err
	}
	return s.repo.Vote(ctx, chatID, messageID, up)
}

func (s *Service) owned(ctx context.Context, sess *session.Session, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != sess.UserID {
		return nil, ErrForbidden
	}
	return chat, nil
}
