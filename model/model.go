package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/taskforce/core"
)

// Request captures the normalized model input produced by agent loops.
type Request struct {
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream,omitempty"`
}

// SystemPrompt returns the content of the leading system message, if any.
func (r Request) SystemPrompt() string {
	if len(r.Messages) > 0 && r.Messages[0].Role == core.RoleSystem {
		return r.Messages[0].Content
	}

	return ""
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"` // Indicates if this is a partial response
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "localai", "mock"
}

// Model is the minimal interface required by agents to drive generation.
//
// Generate emits zero or more partial responses followed by one final
// response on the first channel, or a single error on the second. Both
// channels are closed when generation ends.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrEmptyResponse is returned when a model closes its stream without
// producing any text.
var ErrEmptyResponse = errors.New("empty response")

// Complete drains a Generate call into one final response. Transport errors,
// timeouts, rate limits and empty replies all surface as a single error
// wrapping core.ErrModelCall.
func Complete(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final    *Response
		partials strings.Builder
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, fmt.Errorf("%w: %w", core.ErrModelCall, ctx.Err())
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}

			if r.Partial {
				partials.WriteString(r.Text)
				continue
			}

			final = &r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}

			if err != nil {
				return Response{}, fmt.Errorf("%w: %w", core.ErrModelCall, err)
			}
		}
	}

	if final == nil {
		if partials.Len() == 0 {
			return Response{}, fmt.Errorf("%w: %w", core.ErrModelCall, ErrEmptyResponse)
		}

		return Response{Text: partials.String(), FinishReason: "stop"}, nil
	}

	if final.Text == "" {
		if partials.Len() == 0 {
			return Response{}, fmt.Errorf("%w: %w", core.ErrModelCall, ErrEmptyResponse)
		}

		final.Text = partials.String()
	}

	return *final, nil
}
