package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/config"
	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/llm"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/session"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeStream struct {
	chunks []llm.Chunk
}

func (s *fakeStream) Recv() (llm.Chunk, error) {
	if len(s.chunks) == 0 {
		return llm.Chunk{}, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *fakeStream) Close() {}

// fakeLLM replays one scripted chunk list per StreamChat call. Once the
// script runs out it keeps repeating the last entry.
type fakeLLM struct {
	mu        sync.Mutex
	steps     [][]llm.Chunk
	requests  []llm.Request
	streamErr error
	title     string
	titleErr  error
}

func (f *fakeLLM) StreamChat(ctx context.Context, req llm.Request) (llm.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	i := len(f.requests) - 1
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	chunks := append([]llm.Chunk(nil), f.steps[i]...)
	return &fakeStream{chunks: chunks}, nil
}

func (f *fakeLLM) Complete(ctx context.Context, model string, msgs []openai.ChatCompletionMessage) (string, error) {
	return f.title, f.titleErr
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Send(e Event) { s.events = append(s.events, e) }

func (s *recordingSink) types() []EventType {
	out := make([]EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// memStore is an in-process streams.Store.
type memStore struct {
	mu   sync.Mutex
	cond *sync.Cond
	logs map[string][][]byte
	done map[string]bool
}

func newMemStore() *memStore {
	s := &memStore{logs: map[string][][]byte{}, done: map[string]bool{}}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStore) Publish(ctx context.Context, id string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[id] = append(s.logs[id], payload)
	s.cond.Broadcast()
	return nil
}

func (s *memStore) Complete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[id] = true
	s.cond.Broadcast()
	return nil
}

func (s *memStore) Subscribe(ctx context.Context, id string) (<-chan []byte, error) {
	out := make(chan []byte, 64)
	s.mu.Lock()
	_, ok := s.logs[id]
	s.mu.Unlock()
	if !ok {
		close(out)
		return out, nil
	}
	go func() {
		defer close(out)
		for i := 0; ; i++ {
			s.mu.Lock()
			for i >= len(s.logs[id]) && !s.done[id] {
				s.cond.Wait()
			}
			if i >= len(s.logs[id]) {
				s.mu.Unlock()
				return
			}
			p := s.logs[id][i]
			s.mu.Unlock()
			out <- p
		}
	}()
	return out, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func newTestService(t *testing.T, client llm.Client, store *memStore) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	catalog := llm.NewCatalog(&config.Config{
		LLMChatModel:      "provider/chat",
		LLMReasoningModel: "provider/reasoning",
		LLMTitleModel:     "provider/title",
	})
	svc := NewService(NewRepo(db), tools.Catalog(clinic.NewStore(db)), client, catalog, nil, Options{MaxSteps: 5, MaxDuration: 5 * time.Second})
	if store != nil {
		svc.streams = store
	}
	return svc, db
}

func newUser(t *testing.T, db *gorm.DB, typ models.UserType) *session.Session {
	t.Helper()
	u := &models.User{Email: uuid.NewString() + "@example.com", Type: typ}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &session.Session{UserID: u.ID, Email: u.Email, Type: typ}
}

func newRequest(chatID uuid.UUID, text, model string) *PostRequest {
	return &PostRequest{
		ID: chatID.String(),
		Message: UserMessage{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
			Role:      "user",
			Content:   text,
			Parts:     []TextPart{{Type: "text", Text: text}},
		},
		SelectedChatModel:      model,
		SelectedVisibilityType: "private",
	}
}

func toolCallChunk(index int, id, name, args string) llm.Chunk {
	return llm.Chunk{ToolCalls: []openai.ToolCall{{
		Index:    &index,
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}}}
}

func assistantParts(t *testing.T, db *gorm.DB, id uuid.UUID) []models.Part {
	t.Helper()
	var msg models.Message
	if err := db.First(&msg, "id = ?", id).Error; err != nil {
		t.Fatalf("load assistant message: %v", err)
	}
	parts, err := msg.DecodeParts()
	if err != nil {
		t.Fatalf("decode parts: %v", err)
	}
	return parts
}

// ─── Request validation ─────────────────────────────────────────────────────

func TestPostRequestValidation(t *testing.T) {
	valid := newRequest(uuid.New(), "hello", llm.ChatModel)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *PostRequest)
	}{
		{"bad chat id", func(r *PostRequest) { r.ID = "nope" }},
		{"unknown model", func(r *PostRequest) { r.SelectedChatModel = "gpt" }},
		{"bad visibility", func(r *PostRequest) { r.SelectedVisibilityType = "shared" }},
		{"assistant role", func(r *PostRequest) { r.Message.Role = "assistant" }},
		{"no parts", func(r *PostRequest) { r.Message.Parts = nil }},
		{"empty text", func(r *PostRequest) { r.Message.Parts[0].Text = "" }},
		{"too long", func(r *PostRequest) { r.Message.Content = strings.Repeat("a", 2001) }},
		{"bad attachment", func(r *PostRequest) {
			r.Message.Attachments = []models.Attachment{{URL: "https://x/y.gif", Name: "y.gif", ContentType: "image/gif"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest(uuid.New(), "hello", llm.ChatModel)
			tt.mutate(r)
			if err := r.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

// ─── Prepare ────────────────────────────────────────────────────────────────

func TestPrepareRateLimit(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{title: "Title"}, nil)
	sess := newUser(t, db, models.UserTypeGuest)
	ctx := context.Background()

	chat := &models.Chat{UserID: sess.UserID, Title: "old", Visibility: models.VisibilityPrivate}
	if err := db.Create(chat).Error; err != nil {
		t.Fatalf("create chat: %v", err)
	}
	// an old message outside the window does not count
	old := &models.Message{ChatID: chat.ID, Role: models.RoleUser, CreatedAt: time.Now().Add(-25 * time.Hour)}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	for i := 0; i < 19; i++ {
		m := &models.Message{ChatID: chat.ID, Role: models.RoleUser, CreatedAt: time.Now().Add(-time.Hour)}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	// 20th message of the day is accepted
	if _, err := svc.Prepare(ctx, sess, newRequest(chat.ID, "twentieth", llm.ChatModel), Hints{}); err != nil {
		t.Fatalf("Prepare under quota: %v", err)
	}

	// 21st is rejected and nothing is written
	req := newRequest(chat.ID, "one too many", llm.ChatModel)
	if _, err := svc.Prepare(ctx, sess, req, Hints{}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	var n int64
	db.Model(&models.Message{}).Where("id = ?", req.Message.ID).Count(&n)
	if n != 0 {
		t.Fatalf("rate-limited message was persisted")
	}
}

func TestPrepareCreatesChatWithTitle(t *testing.T) {
	client := &fakeLLM{title: `"Booking: a cardiologist"`}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	chatID := uuid.New()
	turn, err := svc.Prepare(context.Background(), sess, newRequest(chatID, "I need a cardiologist", llm.ChatModel), Hints{City: "Austin"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if turn.ChatID != chatID || turn.StreamID == uuid.Nil || turn.MessageID == uuid.Nil {
		t.Fatalf("incomplete turn: %+v", turn)
	}
	if !strings.Contains(turn.system, "city: Austin") || !strings.Contains(turn.system, "Tool usage") {
		t.Fatalf("system prompt missing hints or tool guidance")
	}
	if len(turn.history) != 1 || turn.history[0].Content != "I need a cardiologist" {
		t.Fatalf("unexpected history: %+v", turn.history)
	}

	chat, err := svc.Repo().GetChat(context.Background(), chatID)
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if chat.Title != "Booking a cardiologist" {
		t.Fatalf("title = %q", chat.Title)
	}
}

func TestPrepareTitleFallsBackToMessage(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{titleErr: llm.ErrUpstream}, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	text := strings.Repeat("headache ", 20)
	chatID := uuid.New()
	if _, err := svc.Prepare(context.Background(), sess, newRequest(chatID, text, llm.ChatModel), Hints{}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	chat, _ := svc.Repo().GetChat(context.Background(), chatID)
	if len(chat.Title) != 80 || !strings.HasPrefix(chat.Title, "headache headache") {
		t.Fatalf("fallback title = %q", chat.Title)
	}
}

func TestPrepareRejectsForeignChat(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{title: "x"}, nil)
	owner := newUser(t, db, models.UserTypeRegular)
	other := newUser(t, db, models.UserTypeRegular)

	chatID := uuid.New()
	if _, err := svc.Prepare(context.Background(), owner, newRequest(chatID, "hi", llm.ChatModel), Hints{}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := svc.Prepare(context.Background(), other, newRequest(chatID, "hi", llm.ChatModel), Hints{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ─── Run ────────────────────────────────────────────────────────────────────

func TestRunExecutesToolsAndPersists(t *testing.T) {
	client := &fakeLLM{title: "Doctors", steps: [][]llm.Chunk{
		{
			toolCallChunk(0, "call_1", "list_doctors", "{"),
			toolCallChunk(0, "", "", "}"),
		},
		{
			{Content: "Here are "},
			{Content: "the doctors."},
		},
	}}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "who is available?", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sink := &recordingSink{}
	svc.Run(context.Background(), turn, sink)

	want := []EventType{
		EventStart, EventToolCall, EventToolResult, EventStepFinish,
		EventText, EventText, EventText, EventText, EventStepFinish, EventFinish,
	}
	got := sink.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}

	result := sink.events[2]
	if *result.IsError || result.ToolName != "list_doctors" || *result.Step != 0 {
		t.Fatalf("unexpected tool result event: %+v", result)
	}
	var doctors tools.DoctorList
	if err := json.Unmarshal(result.Result, &doctors); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}

	if len(client.requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.requests))
	}
	if len(client.requests[0].Tools) != 23 {
		t.Fatalf("expected full tool catalog, got %d", len(client.requests[0].Tools))
	}
	second := client.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call_1" {
		t.Fatalf("tool result not fed back: %+v", last)
	}

	parts := assistantParts(t, db, turn.MessageID)
	if len(parts) != 2 || parts[0].Type != models.PartToolInvocation || parts[1].Text != "Here are the doctors." {
		t.Fatalf("unexpected stored parts: %+v", parts)
	}
	if parts[0].ToolInvocation.State != models.ToolStateResult {
		t.Fatalf("stored invocation state = %s", parts[0].ToolInvocation.State)
	}
}

func TestRunToolFailureIsFedBack(t *testing.T) {
	client := &fakeLLM{title: "t", steps: [][]llm.Chunk{
		{toolCallChunk(0, "call_1", "book_appointment", `{"doctor_id": 999, "time": "2030-01-01T10:00:00Z"}`)},
		{{Content: "Sorry, that doctor does not exist."}},
	}}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "book", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sink := &recordingSink{}
	svc.Run(context.Background(), turn, sink)

	var result *Event
	for i := range sink.events {
		if sink.events[i].Type == EventToolResult {
			result = &sink.events[i]
		}
	}
	if result == nil || !*result.IsError {
		t.Fatalf("expected failed tool result, got %+v", sink.events)
	}
	if string(result.Result) != `{"error":"Doctor not found"}` {
		t.Fatalf("error payload = %s", result.Result)
	}

	var n int64
	db.Model(&models.Appointment{}).Count(&n)
	if n != 0 {
		t.Fatalf("failed booking wrote %d appointments", n)
	}
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	client := &fakeLLM{title: "t", steps: [][]llm.Chunk{
		{toolCallChunk(0, "", "list_labs", "{}")},
	}}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "labs", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sink := &recordingSink{}
	svc.Run(context.Background(), turn, sink)

	if len(client.requests) != 5 {
		t.Fatalf("expected 5 model calls, got %d", len(client.requests))
	}
	if last := sink.events[len(sink.events)-1]; last.Type != EventFinish {
		t.Fatalf("last event = %s", last.Type)
	}
	parts := assistantParts(t, db, turn.MessageID)
	if len(parts) != 5 {
		t.Fatalf("expected 5 tool invocations, got %d", len(parts))
	}
	for i, p := range parts {
		if p.ToolInvocation.Step != i || !strings.HasPrefix(p.ToolInvocation.ToolCallID, "call_") {
			t.Fatalf("part %d: %+v", i, p.ToolInvocation)
		}
	}
}

func TestRunUpstreamFailure(t *testing.T) {
	client := &fakeLLM{title: "t", streamErr: llm.ErrUpstream}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "hi", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sink := &recordingSink{}
	svc.Run(context.Background(), turn, sink)

	last := sink.events[len(sink.events)-1]
	if last.Type != EventError || last.Error != "Oops, an error occurred!" {
		t.Fatalf("last event = %+v", last)
	}
	var n int64
	db.Model(&models.Message{}).Where("id = ?", turn.MessageID).Count(&n)
	if n != 0 {
		t.Fatalf("assistant message persisted after failure")
	}
}

func TestRunReasoningModel(t *testing.T) {
	client := &fakeLLM{title: "t", steps: [][]llm.Chunk{
		{{Content: "<thi"}, {Content: "nk>check dose</think>Take it "}, {Content: "with food."}},
	}}
	svc, db := newTestService(t, client, nil)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "ibuprofen?", llm.ReasoningModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if strings.Contains(turn.system, "Tool usage") {
		t.Fatalf("reasoning prompt should not carry tool guidance")
	}
	sink := &recordingSink{}
	svc.Run(context.Background(), turn, sink)

	if client.requests[0].Tools != nil {
		t.Fatalf("reasoning model got tools")
	}
	if client.requests[0].Model != "provider/reasoning" {
		t.Fatalf("model = %s", client.requests[0].Model)
	}
	if sink.events[1].Type != EventReasoning || sink.events[1].Delta != "check dose" {
		t.Fatalf("expected reasoning event, got %+v", sink.events[1])
	}

	parts := assistantParts(t, db, turn.MessageID)
	if len(parts) != 2 || parts[0].Reasoning != "check dose" || parts[1].Text != "Take it with food." {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestStreamThroughStore(t *testing.T) {
	store := newMemStore()
	client := &fakeLLM{title: "t", steps: [][]llm.Chunk{{{Content: "All good."}}}}
	svc, db := newTestService(t, client, store)
	sess := newUser(t, db, models.UserTypeRegular)

	turn, err := svc.Prepare(context.Background(), sess, newRequest(uuid.New(), "hi", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	svc.Stream(turn, w)

	frames := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	if len(frames) < 4 {
		t.Fatalf("expected at least 4 frames, got %q", buf.String())
	}
	if !strings.HasPrefix(frames[0], `data: {"type":"start"`) {
		t.Fatalf("first frame = %q", frames[0])
	}
	if !strings.HasPrefix(frames[len(frames)-1], `data: {"type":"finish"`) {
		t.Fatalf("last frame = %q", frames[len(frames)-1])
	}

	// a late subscriber replays the whole turn
	var replay []string
	err = svc.Tail(context.Background(), turn.StreamID.String(), func(p []byte) error {
		replay = append(replay, string(p))
		return nil
	})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(replay) != len(frames) {
		t.Fatalf("replayed %d frames, streamed %d", len(replay), len(frames))
	}
}

// ─── Resume, delete, votes ──────────────────────────────────────────────────

func TestResumeTarget(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{title: "t"}, newMemStore())
	owner := newUser(t, db, models.UserTypeRegular)
	other := newUser(t, db, models.UserTypeRegular)
	ctx := context.Background()

	if _, err := svc.ResumeTarget(ctx, owner, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	chat := &models.Chat{UserID: owner.UserID, Title: "c", Visibility: models.VisibilityPrivate}
	db.Create(chat)
	if _, err := svc.ResumeTarget(ctx, owner, chat.ID); !errors.Is(err, ErrNoStreams) {
		t.Fatalf("expected ErrNoStreams, got %v", err)
	}
	if _, err := svc.ResumeTarget(ctx, other, chat.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	first := &models.Stream{ChatID: chat.ID, CreatedAt: time.Now().Add(-time.Minute)}
	latest := &models.Stream{ChatID: chat.ID, CreatedAt: time.Now()}
	db.Create(first)
	db.Create(latest)
	id, err := svc.ResumeTarget(ctx, owner, chat.ID)
	if err != nil || id != latest.ID {
		t.Fatalf("ResumeTarget = %s, %v; want %s", id, err, latest.ID)
	}

	db.Model(chat).Update("visibility", models.VisibilityPublic)
	if _, err := svc.ResumeTarget(ctx, other, chat.ID); err != nil {
		t.Fatalf("public chat should be resumable by others: %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{title: "t", steps: [][]llm.Chunk{{{Content: "ok"}}}}, nil)
	owner := newUser(t, db, models.UserTypeRegular)
	other := newUser(t, db, models.UserTypeRegular)
	ctx := context.Background()

	turn, err := svc.Prepare(ctx, owner, newRequest(uuid.New(), "hi", llm.ChatModel), Hints{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	svc.Run(ctx, turn, &recordingSink{})
	if err := svc.Vote(ctx, owner, turn.ChatID, turn.MessageID, true); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	if _, err := svc.Delete(ctx, other, turn.ChatID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	deleted, err := svc.Delete(ctx, owner, turn.ChatID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != turn.ChatID {
		t.Fatalf("deleted %s, want %s", deleted.ID, turn.ChatID)
	}

	for _, m := range []interface{}{&models.Message{}, &models.Vote{}, &models.Stream{}, &models.Chat{}} {
		var n int64
		db.Model(m).Count(&n)
		if n != 0 {
			t.Fatalf("%T rows left after delete: %d", m, n)
		}
	}
	if _, err := svc.Delete(ctx, owner, turn.ChatID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestVoteUpserts(t *testing.T) {
	svc, db := newTestService(t, &fakeLLM{title: "t"}, nil)
	owner := newUser(t, db, models.UserTypeRegular)
	ctx := context.Background()

	chat := &models.Chat{UserID: owner.UserID, Title: "c", Visibility: models.VisibilityPrivate}
	db.Create(chat)
	msgID := uuid.New()

	if err := svc.Vote(ctx, owner, chat.ID, msgID, true); err != nil {
		t.Fatalf("Vote up: %v", err)
	}
	if err := svc.Vote(ctx, owner, chat.ID, msgID, false); err != nil {
		t.Fatalf("Vote down: %v", err)
	}
	votes, err := svc.Votes(ctx, owner, chat.ID)
	if err != nil {
		t.Fatalf("Votes: %v", err)
	}
	if len(votes) != 1 || votes[0].IsUpvoted {
		t.Fatalf("expected one downvote, got %+v", votes)
	}
}
