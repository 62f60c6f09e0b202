package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies progress events emitted on the presentation side
// channel.
type EventType string

const (
	EventStart       EventType = "start"
	EventPlan        EventType = "plan"
	EventToolCall    EventType = "tool_call"
	EventToolResult  EventType = "tool_result"
	EventCompressed  EventType = "compressed"
	EventFinal       EventType = "final"
	EventError       EventType = "error"
	EventDelegated   EventType = "delegated"
	EventAgentFinish EventType = "agent_finished"
)

// Event is an immutable progress record. Events describe what an agent is
// doing for humans and tracing; they never feed back into control flow.
type Event struct {
	ID        string         `json:"id"`
	Agent     string         `json:"agent"`
	Type      EventType      `json:"type"`
	Step      int            `json:"step"`
	Text      string         `json:"text,omitempty"`
	Tool      *ToolCall      `json:"tool,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates a bare event authored by agent.
func NewEvent(agent string, typ EventType) Event {
	return Event{
		ID:        NewID(),
		Agent:     agent,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
}

// NewID returns a random identifier.
func NewID() string { return uuid.NewString() }

// ShortID returns the first eight hex characters of a random UUID. Short ids
// are what models see (knowledge ids, generated agent ids), so they are kept
// readable; callers must handle the rare collision.
func ShortID() string { return uuid.NewString()[:8] }

// Observer receives progress events. Implementations must be safe for
// concurrent use because sibling agents emit in parallel.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(e Event) { f(e) }

// NoOpObserver discards all events.
type NoOpObserver struct{}

// OnEvent implements Observer.
func (NoOpObserver) OnEvent(Event) {}
