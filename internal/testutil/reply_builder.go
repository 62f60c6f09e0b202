package testutil

import (
	"strings"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/protocol"
)

// ReplyBuilder provides a fluent helper for scripting model replies.
// Example:
//
//	reply := NewReplyBuilder().Plan("look it up").Tool("search", map[string]any{"q": "go"}).Build()
//
// Chain only the parts you need.
type ReplyBuilder struct {
	plan *string
	text []string
	call *core.ToolCall
	raw  []string
}

// NewReplyBuilder creates an empty builder.
func NewReplyBuilder() *ReplyBuilder { return &ReplyBuilder{} }

// Plan sets the <plan> region (chainable).
func (b *ReplyBuilder) Plan(p string) *ReplyBuilder { b.plan = &p; return b }

// Text appends free text placed between plan and tool (chainable).
func (b *ReplyBuilder) Text(t string) *ReplyBuilder { b.text = append(b.text, t); return b }

// Tool sets the tool call (chainable).
func (b *ReplyBuilder) Tool(name string, args map[string]any) *ReplyBuilder {
	b.call = &core.ToolCall{Name: name, Args: args}
	return b
}

// Raw appends verbatim text at the end, e.g. a broken tool region (chainable).
func (b *ReplyBuilder) Raw(s string) *ReplyBuilder { b.raw = append(b.raw, s); return b }

// Build renders the reply text.
func (b *ReplyBuilder) Build() string {
	var parts []string

	if b.plan != nil {
		parts = append(parts, protocol.PlanOpen+*b.plan+protocol.PlanClose)
	}

	parts = append(parts, b.text...)

	if b.call != nil {
		parts = append(parts, protocol.FormatToolCall(*b.call))
	}

	parts = append(parts, b.raw...)

	return strings.Join(parts, "\n")
}

// ToolReply is shorthand for a reply consisting of one tool call.
func ToolReply(name string, args map[string]any) string {
	return NewReplyBuilder().Tool(name, args).Build()
}

// PlannedToolReply is shorthand for a plan followed by one tool call.
func PlannedToolReply(plan, name string, args map[string]any) string {
	return NewReplyBuilder().Plan(plan).Tool(name, args).Build()
}
