package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/agent"
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/internal/testutil"
	"github.com/hupe1980/taskforce/knowledge"
	"github.com/hupe1980/taskforce/model"
	"github.com/hupe1980/taskforce/tool"
)

// researcher stores one finding per task and reports the storage id.
func researcher() *model.MockModel {
	return model.NewMockModel("worker").SetResponder(func(_ context.Context, req model.Request) (string, error) {
		msgs := req.Messages
		if len(msgs) == 2 {
			return testutil.ToolReply(tool.PutKnowledgeName, map[string]any{
				"content":    "finding for " + msgs[1].Content,
				"tags":       "research",
				"importance": "high",
			}), nil
		}

		last := msgs[len(msgs)-1].Content
		last = strings.TrimSuffix(strings.TrimPrefix(last, "<result>"), "</result>")
		id := last[strings.LastIndex(last, ": ")+2:]

		return "stored " + id, nil
	})
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilModel)

	_, err = New(model.NewMockModel("m"), func(o *Options) {
		o.WorkerTools = []tool.Tool{testutil.FailingTool(tool.PutKnowledgeName, testutil.ErrBoom)}
	})
	assert.Error(t, err)
}

func TestNew_LeadTools(t *testing.T) {
	o, err := New(model.NewMockModel("m"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"delegate",
		"delegate_multiple",
		"get_agent_result",
		"get_database",
		"list_agents",
		"search_database",
	}, o.Lead().Registry().Names())
	assert.Equal(t, DefaultMaxSteps, o.Lead().MaxSteps())
	assert.Equal(t, DefaultName, o.Lead().Name())
	assert.Empty(t, o.Agents())
	assert.NotNil(t, o.Store())
}

func TestLeadSystemPrompt(t *testing.T) {
	o, err := New(model.NewMockModel("m"), func(o *Options) { o.MaxSteps = 12 })
	require.NoError(t, err)

	prompt, err := o.Lead().SystemPrompt(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are lead, a senior manager"))
	assert.Equal(t, 1, strings.Count(prompt, "AVAILABLE TOOLS:"))
	assert.Contains(t, prompt, "- delegate(task: string, agent_id?: string) - ")
	assert.Contains(t, prompt, "You have at most 12 tool calls.")
	assert.Contains(t, prompt, StorageInstruction)
}

func TestRun_DelegatesAndCollects(t *testing.T) {
	store, err := knowledge.NewStore()
	require.NoError(t, err)

	worker := researcher()
	lead := model.NewMockModel("lead",
		testutil.PlannedToolReply("split the work", "delegate_multiple", map[string]any{
			"tasks": []any{
				map[string]any{"task": "population of Lisbon", "agent_id": "w1"},
				map[string]any{"task": "population of Porto", "agent_id": "w2"},
			},
		}),
		testutil.ToolReply("search_database", map[string]any{"query": "Lisbon"}),
		"<plan>write it up</plan>Final report",
	)

	rec := testutil.NewRecorder()

	o, err := New(lead, func(o *Options) {
		o.WorkerModel = worker
		o.Store = store
		o.Observer = rec
	})
	require.NoError(t, err)

	out := o.Run(context.Background(), "Compare Lisbon and Porto")

	require.Equal(t, agent.StateDone, out.State, out.Output)
	assert.Equal(t, "<plan>write it up</plan>Final report", out.Output)
	assert.Equal(t, 2, out.Steps)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 4, worker.Calls())

	agents := o.Agents()
	require.Len(t, agents, 2)
	for i, id := range []string{"w1", "w2"} {
		assert.Equal(t, id, agents[i].ID)
		assert.Equal(t, core.StatusCompleted, agents[i].Status)
		require.True(t, strings.HasPrefix(agents[i].Result, "stored "))

		entry, err := store.Get(context.Background(), strings.TrimPrefix(agents[i].Result, "stored "))
		require.NoError(t, err)
		assert.Equal(t, "finding for "+agents[i].Task, entry.Content)
		assert.Equal(t, core.ImportanceHigh, entry.Importance)
	}

	reqs := lead.Requests()
	require.Len(t, reqs, 3)

	combined := reqs[1].Messages[len(reqs[1].Messages)-1].Content
	assert.True(t, strings.HasPrefix(combined, "<result>[w1]: stored "))
	assert.Contains(t, combined, "\n\n[w2]: stored ")

	search := reqs[2].Messages[len(reqs[2].Messages)-1].Content
	assert.Contains(t, search, "The query results for the database:")
	assert.Contains(t, search, "finding for population of Lisbon")

	assert.Equal(t, 2, rec.Count(core.EventDelegated))
	assert.Equal(t, 2, rec.Count(core.EventAgentFinish))
}

func TestRun_WorkerFailureIsIsolated(t *testing.T) {
	stuck := model.NewMockModel("worker").SetResponder(func(_ context.Context, req model.Request) (string, error) {
		if strings.Contains(req.Messages[1].Content, "loop") {
			return testutil.ToolReply("search_database", map[string]any{"query": "x"}), nil
		}
		return "quick answer", nil
	})

	lead := model.NewMockModel("lead",
		testutil.ToolReply("delegate_multiple", map[string]any{
			"tasks": `[{"task": "loop forever", "agent_id": "a"}, {"task": "answer", "agent_id": "b"}]`,
		}),
		"done",
	)

	o, err := New(lead, func(o *Options) {
		o.WorkerModel = stuck
		o.WorkerMaxSteps = 2
	})
	require.NoError(t, err)

	out := o.Run(context.Background(), "task")
	require.Equal(t, agent.StateDone, out.State)

	combined := lead.Requests()[1].Messages[3].Content
	assert.Equal(t, "<result>[a] Error: Maximum steps exceeded\n\n[b]: quick answer</result>", combined)

	agents := o.Agents()
	require.Len(t, agents, 2)
	assert.Equal(t, core.StatusFailed, agents[0].Status)
	assert.Equal(t, core.StatusCompleted, agents[1].Status)
}

func TestRun_WorkerToolsAndPrompt(t *testing.T) {
	worker := model.NewMockModel("worker").SetResponder(func(_ context.Context, req model.Request) (string, error) {
		return "done", nil
	})
	lead := model.NewMockModel("lead",
		testutil.ToolReply("delegate", map[string]any{"task": "t", "agent_id": "solo"}),
		"ok",
	)

	o, err := New(lead, func(o *Options) {
		o.WorkerModel = worker
		o.WorkerTools = []tool.Tool{testutil.EchoTool()}
	})
	require.NoError(t, err)

	out := o.Run(context.Background(), "task")
	require.Equal(t, agent.StateDone, out.State)

	require.Equal(t, 1, worker.Calls())
	system := worker.Requests()[0].SystemPrompt()
	assert.True(t, strings.HasPrefix(system, "You are solo, an agent on a team"))
	for _, name := range []string{"echo", "put_database", "get_database", "search_database"} {
		assert.Contains(t, system, "- "+name+"(")
	}
	assert.NotContains(t, system, "- delegate(")
	assert.Contains(t, system, "You have at most 50 tool calls.")

	assert.Equal(t, "<result>done</result>", lead.Requests()[1].Messages[3].Content)
}
