// Package localai provides a model.Model for OpenAI compatible servers such
// as LocalAI, Ollama or vLLM, built on the community go-openai client.
package localai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/model"
)

// DefaultTimeout bounds a single HTTP exchange when none is configured.
const DefaultTimeout = 150 * time.Second

// ChatClient is the subset of *openai.Client the adapter needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// StreamClient is a ChatClient that can also stream.
type StreamClient interface {
	ChatClient
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// NewClient builds a go-openai client for baseURL. Local servers usually
// ignore the key, so a placeholder is used when it is empty.
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	if apiKey == "" {
		apiKey = "sk-xxx"
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	config.HTTPClient = &http.Client{Timeout: timeout}

	return openai.NewClientWithConfig(config)
}

// Options configure the adapter.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Model adapts a ChatClient to model.Model.
type Model struct {
	client ChatClient
	opts   Options
}

// NewModel creates a Model over client.
func NewModel(client ChatClient, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. Streaming is used only when requested and
// supported by the client.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		creq := openai.ChatCompletionRequest{
			Model:       m.opts.Model,
			Messages:    buildMessages(req.Messages),
			Temperature: m.opts.Temperature,
			MaxTokens:   m.opts.MaxTokens,
		}

		if sc, ok := m.client.(StreamClient); ok && req.Stream {
			m.handleStreaming(ctx, sc, creq, out, errCh)
			return
		}

		resp, err := m.client.CreateChatCompletion(ctx, creq)
		if err != nil {
			errCh <- fmt.Errorf("chat completion: %w", err)
			return
		}

		if len(resp.Choices) == 0 {
			errCh <- fmt.Errorf("no choices returned")
			return
		}

		ch0 := resp.Choices[0]
		out <- model.Response{
			ID:           resp.ID,
			Text:         ch0.Message.Content,
			FinishReason: string(ch0.FinishReason),
			Usage: &model.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}
	}()

	return out, errCh
}

func (m *Model) handleStreaming(
	ctx context.Context,
	client StreamClient,
	creq openai.ChatCompletionRequest,
	out chan<- model.Response,
	errCh chan<- error,
) {
	creq.Stream = true

	stream, err := client.CreateChatCompletionStream(ctx, creq)
	if err != nil {
		errCh <- fmt.Errorf("chat completion stream: %w", err)
		return
	}
	defer stream.Close()

	var (
		text   strings.Builder
		id     string
		reason string
	)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			errCh <- fmt.Errorf("chat completion stream: %w", err)
			return
		}

		id = chunk.ID

		for _, ch := range chunk.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				out <- model.Response{ID: id, Partial: true, Text: ch.Delta.Content}
			}

			if ch.FinishReason != "" {
				reason = string(ch.FinishReason)
			}
		}
	}

	if reason == "" {
		reason = "stop"
	}

	out <- model.Response{ID: id, Text: text.String(), FinishReason: reason}
}

func buildMessages(msgs []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))

	for _, msg := range msgs {
		role := openai.ChatMessageRoleUser

		switch msg.Role {
		case core.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case core.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}

		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	return out
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "localai"}
}
