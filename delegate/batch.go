package delegate

import (
	"fmt"
	"strings"

	"github.com/hupe1980/taskforce/core"
)

// Batch holds the terminal handles of one DelegateMany call in submission
// order.
type Batch struct {
	Handles []core.AgentHandle
}

// Failed counts the handles that did not complete.
func (b Batch) Failed() int {
	n := 0
	for _, h := range b.Handles {
		if h.Status != core.StatusCompleted {
			n++
		}
	}

	return n
}

// Combined renders every handle as "[id]: result" or "[id] Error: msg",
// separated by blank lines.
func (b Batch) Combined() string {
	parts := make([]string, 0, len(b.Handles))

	for _, h := range b.Handles {
		if h.Status == core.StatusCompleted {
			parts = append(parts, fmt.Sprintf("[%s]: %s", h.ID, h.Result))
			continue
		}

		msg := strings.TrimPrefix(h.Error, "Error: ")
		if msg == "" {
			msg = "agent did not finish"
		}

		parts = append(parts, fmt.Sprintf("[%s] Error: %s", h.ID, msg))
	}

	return strings.Join(parts, "\n\n")
}
