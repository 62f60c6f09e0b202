package model

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/taskforce/core"
)

// ErrNoMockReply is returned by MockModel when its script is exhausted and
// no responder is set.
var ErrNoMockReply = errors.New("mock model: no scripted reply left")

// ResponderFunc computes a reply from the request. It is used by MockModel
// once all scripted replies are consumed.
type ResponderFunc func(ctx context.Context, req Request) (string, error)

type mockReply struct {
	text string
	err  error
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Scripted replies are returned in order, then the responder (if any) takes
// over. It is safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []mockReply
	responder ResponderFunc
	requests  []Request
}

// NewMockModel constructs a MockModel that replies with the given texts in
// order.
func NewMockModel(name string, replies ...string) *MockModel {
	m := &MockModel{info: Info{Name: name, Provider: "mock"}}
	for _, r := range replies {
		m.script = append(m.script, mockReply{text: r})
	}

	return m
}

// AddReply appends a scripted reply.
func (m *MockModel) AddReply(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.script = append(m.script, mockReply{text: text})

	return m
}

// AddError appends a scripted failure.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.script = append(m.script, mockReply{err: err})

	return m
}

// SetResponder installs fn for requests beyond the script.
func (m *MockModel) SetResponder(fn ResponderFunc) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responder = fn

	return m
}

// Calls returns how many times Generate was invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// Requests returns a copy of every request received, in arrival order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.requests))
	for i, r := range m.requests {
		out[i] = Request{Messages: core.CloneMessages(r.Messages), Stream: r.Stream}
	}

	return out
}

func (m *MockModel) next(req Request) (mockReply, bool, ResponderFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, Request{Messages: core.CloneMessages(req.Messages), Stream: req.Stream})

	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]

		return r, true, nil
	}

	return mockReply{}, false, m.responder
}

// Generate implements Model; emits optional streaming chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	reply, scripted, responder := m.next(req)

	go func() {
		defer close(respCh)
		defer close(errCh)

		full, err := reply.text, reply.err

		if !scripted {
			if responder == nil {
				err = ErrNoMockReply
			} else {
				full, err = responder(ctx, req)
			}
		}

		if err != nil {
			errCh <- err
			return
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: full, FinishReason: "stop"}:
		}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
