// Package llm wraps the OpenAI-compatible provider used for chat, titles and
// transcription.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUpstream marks failures of the model provider.
var ErrUpstream = errors.New("upstream model error")

type Request struct {
	Model    string
	Messages []openai.ChatCompletionMessage
	Tools    []openai.Tool
}

// Chunk is one streamed delta. ToolCalls carry partial arguments that the
// caller merges by Index.
type Chunk struct {
	Content      string
	ToolCalls    []openai.ToolCall
	FinishReason string
}

// Stream yields chunks until Recv returns io.EOF.
type Stream interface {
	Recv() (Chunk, error)
	Close()
}

// Client defines what the chat orchestrator needs from a provider.
type Client interface {
	StreamChat(ctx context.Context, req Request) (Stream, error)
	Complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible endpoint. OpenRouter is the
// default base URL.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

func (c *OpenAIClient) StreamChat(ctx context.Context, req Request) (Stream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Tools:    req.Tools,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return &openAIStream{stream: stream}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (Chunk, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return Chunk{}, io.EOF
	}
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return Chunk{}, nil
	}
	choice := resp.Choices[0]
	return Chunk{
		Content:      choice.Delta.Content,
		ToolCalls:    choice.Delta.ToolCalls,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (s *openAIStream) Close() {
	s.stream.Close()
}
