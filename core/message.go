package core

// Role identifies the author of a transcript message.
type Role string

const (
	// RoleSystem carries the agent's instructions. It is always the first message.
	RoleSystem Role = "system"
	// RoleUser carries the task and every tool result fed back to the model.
	RoleUser Role = "user"
	// RoleAssistant carries raw model replies.
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. An ordered []Message forms the
// transcript handed to a model; it is append-only during a loop iteration.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage returns a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage returns a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage returns an assistant-role message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CloneMessages returns a shallow copy of a transcript so callers can hand it
// to collaborators without exposing the backing array.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// ToolCall is a tool invocation extracted from an assistant reply. At most one
// is honoured per reply. Name must exist in the owning agent's registry at
// execution time, otherwise execution yields an unknown-tool error string.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}
