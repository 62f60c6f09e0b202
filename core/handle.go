package core

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a delegated agent.
type Status int

const (
	// StatusIdle is the state of a freshly reserved handle.
	StatusIdle Status = iota
	// StatusWorking is the state while the child loop runs.
	StatusWorking
	// StatusCompleted is terminal: the child produced a final answer.
	StatusCompleted
	// StatusFailed is terminal: the child errored, panicked or was cancelled.
	StatusFailed
)

// String returns the lower-case status name used in tool output and logs.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusWorking:
		return "working"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool { return s == StatusCompleted || s == StatusFailed }

// AgentHandle records a delegated agent's task, status and result. Handles
// are value types; the delegation layer owns the authoritative copy and hands
// out snapshots.
//
// Lifecycle: Idle -> Working -> {Completed | Failed}.
type AgentHandle struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	Status     Status    `json:"status"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewAgentHandle returns an Idle handle for the given id and task.
func NewAgentHandle(id, task string) AgentHandle {
	return AgentHandle{ID: id, Task: task, Status: StatusIdle, CreatedAt: time.Now().UTC()}
}

// Start moves the handle from Idle to Working.
func (h *AgentHandle) Start() error {
	if h.Status != StatusIdle {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.Status, StatusWorking)
	}
	h.Status = StatusWorking
	h.StartedAt = time.Now().UTC()
	return nil
}

// Complete moves the handle from Working to Completed with the given result.
func (h *AgentHandle) Complete(result string) error {
	if h.Status != StatusWorking {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.Status, StatusCompleted)
	}
	h.Status = StatusCompleted
	h.Result = result
	h.FinishedAt = time.Now().UTC()
	return nil
}

// Fail moves a non-terminal handle to Failed. The message becomes the
// handle's result so callers always have text to show.
func (h *AgentHandle) Fail(msg string) error {
	if h.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.Status, StatusFailed)
	}
	h.Status = StatusFailed
	h.Result = msg
	h.Error = msg
	h.FinishedAt = time.Now().UTC()
	return nil
}

// Duration is the wall time between Start and the terminal transition.
// Zero until the handle is terminal.
func (h AgentHandle) Duration() time.Duration {
	if h.StartedAt.IsZero() || h.FinishedAt.IsZero() {
		return 0
	}
	return h.FinishedAt.Sub(h.StartedAt)
}
