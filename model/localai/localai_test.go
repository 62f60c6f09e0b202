package localai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/model"
)

type mockClient struct {
	createFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	requests   []openai.ChatCompletionRequest
}

func (m *mockClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.requests = append(m.requests, req)
	return m.createFunc(ctx, req)
}

func transcript() []core.Message {
	return []core.Message{
		core.NewSystemMessage("sys"),
		core.NewUserMessage("task"),
		core.NewAssistantMessage("thinking"),
		core.NewUserMessage("<result>r</result>"),
	}
}

func TestModel_Generate(t *testing.T) {
	mc := &mockClient{createFunc: func(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{
			ID: "r1",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "final answer"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		}, nil
	}}

	m := NewModel(mc, func(o *Options) { o.Model = "llama3" })

	resp, err := model.Complete(context.Background(), m, model.Request{Messages: transcript(), Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "final answer", resp.Text)
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	require.Len(t, mc.requests, 1)
	sent := mc.requests[0]
	assert.Equal(t, "llama3", sent.Model)
	require.Len(t, sent.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, sent.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, sent.Messages[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, sent.Messages[3].Role)
	assert.Equal(t, model.Info{Name: "llama3", Provider: "localai"}, m.Info())
}

func TestModel_Errors(t *testing.T) {
	mc := &mockClient{createFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, errors.New("connection refused")
	}}

	_, err := model.Complete(context.Background(), NewModel(mc), model.Request{Messages: transcript()})
	assert.ErrorIs(t, err, core.ErrModelCall)
	assert.ErrorContains(t, err, "connection refused")

	empty := &mockClient{createFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, nil
	}}

	_, err = model.Complete(context.Background(), NewModel(empty), model.Request{Messages: transcript()})
	assert.ErrorContains(t, err, "no choices")
}

func TestModel_StreamingOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"hel", "lo"} {
			fmt.Fprintf(w, "data: {\"id\":\"s1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: {\"id\":\"s1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient("", srv.URL+"/v1", time.Second)
	m := NewModel(client)

	resp, err := model.Complete(context.Background(), m, model.Request{Messages: transcript(), Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
}
