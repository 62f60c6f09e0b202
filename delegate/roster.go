package delegate

import (
	"fmt"
	"sync"

	"github.com/hupe1980/taskforce/core"
)

// Roster tracks the handles created by one Delegator. All methods are safe
// for concurrent use; readers get snapshots.
type Roster struct {
	mu      sync.RWMutex
	handles map[string]*core.AgentHandle
	order   []string
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{handles: make(map[string]*core.AgentHandle)}
}

// reserve registers an Idle handle for task under a free id derived from
// id. An empty id is replaced by a generated one; a taken id gets a numeric
// suffix. It reports the id actually used.
func (r *Roster) reserve(id, task string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = core.ShortID()
		for r.handles[id] != nil {
			id = core.ShortID()
		}
	}

	final := id
	for n := 2; r.handles[final] != nil; n++ {
		final = fmt.Sprintf("%s-%d", id, n)
	}

	h := core.NewAgentHandle(final, task)
	r.handles[final] = &h
	r.order = append(r.order, final)

	return final
}

// update applies fn to the handle under the write lock.
func (r *Roster) update(id string, fn func(h *core.AgentHandle) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[id]
	if !ok {
		return fmt.Errorf("agent %q: %w", id, core.ErrNotFound)
	}

	return fn(h)
}

// Get returns a snapshot of the handle with the given id.
func (r *Roster) Get(id string) (core.AgentHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[id]
	if !ok {
		return core.AgentHandle{}, false
	}

	return *h, true
}

// List returns snapshots of all handles in creation order.
func (r *Roster) List() []core.AgentHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.AgentHandle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.handles[id])
	}

	return out
}

// Len returns the number of handles.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
