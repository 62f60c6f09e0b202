package delegate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/agent"
	"github.com/hupe1980/taskforce/tool"
)

func registry(t *testing.T, d *Delegator) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	require.NoError(t, r.Register(Tools(d)...))
	return r
}

func TestTools_Names(t *testing.T) {
	r := registry(t, New(scripted()))
	assert.Equal(t, []string{DelegateName, DelegateMultipleName, GetAgentResultName, ListAgentsName}, r.Names())
}

func TestDelegateTool(t *testing.T) {
	d := New(scripted())
	r := registry(t, d)
	ctx := context.Background()

	assert.Equal(t, "ok market sizing", r.Execute(ctx, "delegate", map[string]any{"task": "market sizing", "agent_id": "analyst"}))
	assert.Equal(t, agent.MaxStepsExceeded, r.Execute(ctx, "delegate", map[string]any{"task": "exhaust"}))

	out := r.Execute(ctx, "delegate", map[string]any{"task": "  "})
	assert.Equal(t, "Error executing delegate: task must not be empty", out)

	out = r.Execute(ctx, "delegate", map[string]any{})
	assert.True(t, strings.HasPrefix(out, "Error executing delegate: parameter validation failed"))

	assert.Equal(t, 2, d.Roster().Len())
}

func TestDelegateMultipleTool(t *testing.T) {
	ctx := context.Background()

	t.Run("array", func(t *testing.T) {
		r := registry(t, New(scripted()))

		out := r.Execute(ctx, "delegate_multiple", map[string]any{"tasks": []any{
			map[string]any{"task": "one", "agent_id": "a"},
			map[string]any{"task": "exhaust", "agent_id": "b"},
		}})

		assert.Equal(t, "[a]: ok one\n\n[b] Error: Maximum steps exceeded", out)
	})

	t.Run("json string with aliases", func(t *testing.T) {
		r := registry(t, New(scripted()))

		out := r.Execute(ctx, "delegate_multiple", map[string]any{
			"tasks": `[{"question": "q1", "agent": "x"}, {"task": "q2", "agent_id": "x"}]`,
		})

		assert.Equal(t, "[x]: ok q1\n\n[x-2]: ok q2", out)
	})

	t.Run("invalid", func(t *testing.T) {
		r := registry(t, New(scripted()))

		for _, tasks := range []any{"not json", []any{}, []any{map[string]any{"agent_id": "a"}}, 42} {
			out := r.Execute(ctx, "delegate_multiple", map[string]any{"tasks": tasks})
			assert.True(t, strings.HasPrefix(out, "Error executing delegate_multiple: "), out)
		}
	})
}

func TestGetAgentResultAndListAgents(t *testing.T) {
	d := New(scripted())
	r := registry(t, d)
	ctx := context.Background()

	assert.Equal(t, "No agents have been created yet.", r.Execute(ctx, "list_agents", nil))
	assert.Equal(t, "No agent found with ID: ghost", r.Execute(ctx, "get_agent_result", map[string]any{"agent_id": "ghost"}))

	d.DelegateOne(ctx, "alpha", "a")
	d.DelegateOne(ctx, "exhaust", "b")

	assert.Equal(t, "Agent a (completed): ok alpha", r.Execute(ctx, "get_agent_result", map[string]any{"agent_id": " a "}))
	assert.Equal(t, "Agent b (failed): Error: Maximum steps exceeded", r.Execute(ctx, "get_agent_result", map[string]any{"agent_id": "b"}))
	assert.Equal(t, "- a [completed]: alpha\n- b [failed]: exhaust", r.Execute(ctx, "list_agents", nil))
}
