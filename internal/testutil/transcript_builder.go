package testutil

import (
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/protocol"
)

// TranscriptBuilder assembles message sequences for assertions and for
// seeding compressor inputs.
type TranscriptBuilder struct {
	msgs []core.Message
}

// NewTranscriptBuilder creates an empty builder.
func NewTranscriptBuilder() *TranscriptBuilder { return &TranscriptBuilder{} }

// System appends a system message (chainable).
func (b *TranscriptBuilder) System(s string) *TranscriptBuilder {
	b.msgs = append(b.msgs, core.NewSystemMessage(s))
	return b
}

// User appends a user message (chainable).
func (b *TranscriptBuilder) User(s string) *TranscriptBuilder {
	b.msgs = append(b.msgs, core.NewUserMessage(s))
	return b
}

// Assistant appends an assistant message (chainable).
func (b *TranscriptBuilder) Assistant(s string) *TranscriptBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage(s))
	return b
}

// Result appends a user message wrapping s in result markers (chainable).
func (b *TranscriptBuilder) Result(s string) *TranscriptBuilder {
	return b.User(protocol.FormatResult(s))
}

// Repeat appends n copies of the assistant/result pair (chainable).
func (b *TranscriptBuilder) Repeat(n int, assistant, result string) *TranscriptBuilder {
	for i := 0; i < n; i++ {
		b.Assistant(assistant).Result(result)
	}
	return b
}

// Build returns a copy of the assembled transcript.
func (b *TranscriptBuilder) Build() []core.Message { return core.CloneMessages(b.msgs) }
