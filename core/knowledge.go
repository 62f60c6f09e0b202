package core

import (
	"context"
	"strings"
	"time"
)

// Importance is an optional priority label attached to a knowledge entry.
// The zero value means "absent".
type Importance string

const (
	ImportanceNone     Importance = ""
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// ParseImportance normalises free text from a model. Unknown labels map to
// ImportanceNone.
func ParseImportance(s string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceLow:
		return ImportanceLow
	case ImportanceMedium:
		return ImportanceMedium
	case ImportanceHigh:
		return ImportanceHigh
	case ImportanceCritical:
		return ImportanceCritical
	default:
		return ImportanceNone
	}
}

// KnowledgeEntry is an immutable finding written by one agent for others.
type KnowledgeEntry struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Tags       string     `json:"tags,omitempty"`
	Importance Importance `json:"importance,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// KnowledgeStore is the shared hand-off channel between agents. It is
// process-wide shared state: implementations must be safe for concurrent use
// and serialise each individual call. No cross-call transactions are offered;
// entries are independent and immutable once written.
type KnowledgeStore interface {
	// Put stores content under a freshly allocated unique id.
	Put(ctx context.Context, content, tags string, importance Importance) (string, error)
	// Get returns the entry for id or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (KnowledgeEntry, error)
	// Search returns at most limit entries ranked most-relevant first.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
