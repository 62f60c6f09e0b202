package core

import "errors"

var (
	// ErrNotFound is returned by KnowledgeStore.Get for unknown ids and by
	// lookups of unknown agent handles.
	ErrNotFound = errors.New("not found")

	// ErrMaxSteps marks an agent loop that exhausted its step budget.
	ErrMaxSteps = errors.New("maximum steps exceeded")

	// ErrModelCall wraps any failure of the model collaborator (transport,
	// timeout, rate limit, malformed response).
	ErrModelCall = errors.New("model call failed")

	// ErrInvalidTransition is returned when an AgentHandle is asked to leave a
	// terminal state or to skip the Working state.
	ErrInvalidTransition = errors.New("invalid agent status transition")
)
