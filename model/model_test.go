package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/core"
)

func request(text string) Request {
	return Request{Messages: []core.Message{core.NewSystemMessage("sys"), core.NewUserMessage(text)}}
}

func TestComplete_Scripted(t *testing.T) {
	m := NewMockModel("mock", "first", "second")

	r, err := Complete(context.Background(), m, request("a"))
	require.NoError(t, err)
	assert.Equal(t, "first", r.Text)
	assert.Equal(t, "stop", r.FinishReason)

	r, err = Complete(context.Background(), m, Request{Messages: request("b").Messages, Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "second", r.Text)

	_, err = Complete(context.Background(), m, request("c"))
	assert.ErrorIs(t, err, core.ErrModelCall)
	assert.ErrorIs(t, err, ErrNoMockReply)

	assert.Equal(t, 3, m.Calls())
	reqs := m.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "b", reqs[1].Messages[1].Content)
	assert.Equal(t, "sys", reqs[0].SystemPrompt())
}

func TestComplete_ScriptedEmptyReplyIsNotExhaustion(t *testing.T) {
	m := NewMockModel("mock", "")

	_, err := Complete(context.Background(), m, request("a"))
	// the model produced no text at all
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestComplete_ErrorsAndResponder(t *testing.T) {
	boom := errors.New("rate limited")
	m := NewMockModel("mock").AddError(boom).SetResponder(func(_ context.Context, req Request) (string, error) {
		return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
	})

	_, err := Complete(context.Background(), m, request("x"))
	assert.ErrorIs(t, err, core.ErrModelCall)
	assert.ErrorIs(t, err, boom)

	r, err := Complete(context.Background(), m, request("y"))
	require.NoError(t, err)
	assert.Equal(t, "echo: y", r.Text)
}

func TestComplete_ContextCancelled(t *testing.T) {
	m := NewMockModel("mock").SetResponder(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Complete(ctx, m, request("x"))
	assert.ErrorIs(t, err, core.ErrModelCall)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type partialOnly struct{}

func (partialOnly) Generate(_ context.Context, _ Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 3)
	errCh := make(chan error)
	out <- Response{Partial: true, Text: "hel"}
	out <- Response{Partial: true, Text: "lo"}
	close(out)
	close(errCh)
	return out, errCh
}

func (partialOnly) Info() Info { return Info{Name: "partial"} }

func TestComplete_PartialsOnly(t *testing.T) {
	r, err := Complete(context.Background(), partialOnly{}, request("x"))
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Text)
}

func TestMockModel_Concurrent(t *testing.T) {
	m := NewMockModel("mock").SetResponder(func(_ context.Context, req Request) (string, error) {
		return req.Messages[1].Content, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := Complete(context.Background(), m, request("same"))
			assert.NoError(t, err)
			assert.Equal(t, "same", r.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, m.Calls())
	assert.Equal(t, Info{Name: "mock", Provider: "mock"}, m.Info())
}
