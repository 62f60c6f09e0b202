package delegate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/taskforce/internal/util"
	"github.com/hupe1980/taskforce/tool"
)

// Delegation tool names.
const (
	DelegateName         = "delegate"
	DelegateMultipleName = "delegate_multiple"
	GetAgentResultName   = "get_agent_result"
	ListAgentsName       = "list_agents"
)

// Tools returns the delegation tools bound to d.
func Tools(d *Delegator) []tool.Tool {
	return []tool.Tool{
		NewDelegateTool(d),
		NewDelegateMultipleTool(d),
		NewGetAgentResultTool(d),
		NewListAgentsTool(d),
	}
}

// NewDelegateTool returns the delegate tool. It blocks until the child
// finishes and returns the child's result.
func NewDelegateTool(d *Delegator) tool.Tool {
	return tool.NewFunctionTool(
		DelegateName,
		"Input: task + optional agent ID | Action: run the task on a new agent and wait for it | Output: the agent's final result",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task":     map[string]any{"type": "string", "description": "Complete, self-contained instructions for the agent"},
				"agent_id": map[string]any{"type": "string", "description": "Optional agent name"},
			},
			"required": []string{"task"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			task, _ := util.StringArg(args, "task")
			if strings.TrimSpace(task) == "" {
				return nil, errors.New("task must not be empty")
			}

			agentID, _ := util.StringArg(args, "agent_id")

			h := d.DelegateOne(ctx, task, strings.TrimSpace(agentID))

			return h.Result, nil
		},
	)
}

// NewDelegateMultipleTool returns the delegate_multiple tool. The task list
// may be given as an array or as a JSON string holding the array.
func NewDelegateMultipleTool(d *Delegator) tool.Tool {
	return tool.NewFunctionTool(
		DelegateMultipleName,
		`Input: list of {"task": ..., "agent_id": ...} objects | Action: run all tasks on new agents in parallel | Output: every agent's result labelled by ID`,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tasks": map[string]any{"description": "Array of task objects, or the same array encoded as a JSON string"},
			},
			"required": []string{"tasks"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			tasks, err := parseTasks(args)
			if err != nil {
				return nil, err
			}

			return d.DelegateMany(ctx, tasks).Combined(), nil
		},
	)
}

// parseTasks reads the task list. "question" and "agent" are accepted as
// aliases of "task" and "agent_id".
func parseTasks(args map[string]any) ([]Task, error) {
	items, err := util.ObjectSliceArg(args, "tasks")
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, errors.New("tasks must not be empty")
	}

	tasks := make([]Task, 0, len(items))

	for i, item := range items {
		task, ok := util.StringArg(item, "task")
		if !ok {
			task, _ = util.StringArg(item, "question")
		}

		if strings.TrimSpace(task) == "" {
			return nil, fmt.Errorf("tasks[%d]: missing task", i)
		}

		id, ok := util.StringArg(item, "agent_id")
		if !ok {
			id, _ = util.StringArg(item, "agent")
		}

		tasks = append(tasks, Task{Task: task, AgentID: strings.TrimSpace(id)})
	}

	return tasks, nil
}

// NewGetAgentResultTool returns the get_agent_result tool.
func NewGetAgentResultTool(d *Delegator) tool.Tool {
	return tool.NewFunctionTool(
		GetAgentResultName,
		"Input: agent ID | Action: look up a delegated agent | Output: its status and result",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"agent_id": map[string]any{"type": "string", "description": "ID of a delegated agent"},
			},
			"required": []string{"agent_id"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			id, _ := util.StringArg(args, "agent_id")
			id = strings.TrimSpace(id)

			h, ok := d.Roster().Get(id)
			if !ok {
				return fmt.Sprintf("No agent found with ID: %s", id), nil
			}

			if h.Result == "" {
				return fmt.Sprintf("Agent %s is %s", h.ID, h.Status), nil
			}

			return fmt.Sprintf("Agent %s (%s): %s", h.ID, h.Status, h.Result), nil
		},
	)
}

// NewListAgentsTool returns the list_agents tool.
func NewListAgentsTool(d *Delegator) tool.Tool {
	return tool.NewFunctionTool(
		ListAgentsName,
		"Input: none | Action: list all delegated agents | Output: one line per agent with status and task",
		nil,
		func(context.Context, map[string]any) (any, error) {
			handles := d.Roster().List()
			if len(handles) == 0 {
				return "No agents have been created yet.", nil
			}

			lines := make([]string, 0, len(handles))
			for _, h := range handles {
				lines = append(lines, fmt.Sprintf("- %s [%s]: %s", h.ID, h.Status, h.Task))
			}

			return strings.Join(lines, "\n"), nil
		},
	)
}
