package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/taskforce/internal/util"
)

// DefaultInstruction is used when a Loop is built without an instruction.
const DefaultInstruction = "You are {{.name}}, a capable agent. Use the available tools to complete the user's request."

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(ctx context.Context) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context) (string, error) { return f(ctx) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether no text and no provider were set.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx)
	}

	return i.text, nil
}

// PromptData is the template state available to instructions as
// {{.name}}, {{.tools}} and {{.max_steps}}.
type PromptData struct {
	Name     string
	Tools    string
	MaxSteps int
}

func (d PromptData) state() map[string]any {
	return map[string]any{
		"name":      d.Name,
		"tools":     d.Tools,
		"max_steps": d.MaxSteps,
	}
}

// RenderSystemPrompt resolves the instruction, expands its template
// placeholders and appends the protocol guide. Instructions that place the
// catalogue themselves via {{.tools}} are expected to carry their own
// protocol description and get nothing appended.
func RenderSystemPrompt(ctx context.Context, instr Instruction, data PromptData) (string, error) {
	text, err := instr.Resolve(ctx)
	if err != nil {
		return "", err
	}

	rendered, err := util.RenderTemplate(text, data.state())
	if err != nil {
		return "", err
	}

	if strings.Contains(text, ".tools") {
		return rendered, nil
	}

	return strings.TrimSpace(rendered) + "\n\n" + ProtocolGuide(data.Tools), nil
}

// ProtocolGuide describes the plan/tool/result markup and lists the tool
// catalogue.
func ProtocolGuide(catalogue string) string {
	var b strings.Builder

	b.WriteString("AVAILABLE TOOLS:\n\n")
	b.WriteString(catalogue)
	b.WriteString(`

CONVERSATION HISTORY FORMAT:
- Your tool calls appear as: <tool>{"name": "tool_name", "args": {"parameter": "value"}}</tool>
- Environment responses appear as: <result>[tool output]</result>

EXECUTION PROCESS:
1. Plan: think about what is still missing.
2. Check state: read the latest <result> before acting again.
3. Act: call exactly one tool per response.
4. Assess: when the request is completely fulfilled, answer without a tool call.

KEY RULE: every response must end with a tool call unless you have completely fulfilled the user's request.

Format responses as:
<plan>
Your analysis and next step
</plan>
<tool>
{"name": "tool_name", "args": {"parameter": "value"}}
</tool>`)

	return b.String()
}
