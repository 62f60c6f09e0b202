package testutil

import (
	"sync"

	"github.com/hupe1980/taskforce/core"
)

// Recorder is a core.Observer that keeps every event for later inspection.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// OnEvent implements core.Observer.
func (r *Recorder) OnEvent(e core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a snapshot of the recorded events.
func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []core.EventType {
	events := r.Events()
	types := make([]core.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

// Filter returns the recorded events of type t.
func (r *Recorder) Filter(t core.EventType) []core.Event {
	var out []core.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of type t were recorded.
func (r *Recorder) Count(t core.EventType) int { return len(r.Filter(t)) }
