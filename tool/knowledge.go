package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/internal/util"
)

// Knowledge tool names.
const (
	PutKnowledgeName    = "put_database"
	GetKnowledgeName    = "get_database"
	SearchKnowledgeName = "search_database"
)

// MaxSearchResults caps the number of entries search_database returns.
const MaxSearchResults = 10

// NewPutKnowledgeTool returns the put_database tool. agent names the writer
// in the confirmation so the reader of a digest knows who stored what.
func NewPutKnowledgeTool(store core.KnowledgeStore, agent string) Tool {
	return NewFunctionTool(
		PutKnowledgeName,
		"Input: information + tags/importance | Action: save information to the shared database with a unique ID | Output: storage confirmation with ID",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content":    map[string]any{"type": "string", "description": "The information to store"},
				"tags":       map[string]any{"type": "string", "description": "Comma separated tags"},
				"importance": map[string]any{"type": "string", "description": "low, medium, high or critical"},
			},
			"required": []string{"content"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			content, _ := util.StringArg(args, "content")
			tags, _ := util.StringArg(args, "tags")
			importance, _ := util.StringArg(args, "importance")

			id, err := store.Put(ctx, content, tags, core.ParseImportance(importance))
			if err != nil {
				return nil, err
			}

			return fmt.Sprintf("Agent %s stored data into database with ID: %s", agent, id), nil
		},
	)
}

// NewGetKnowledgeTool returns the get_database tool.
func NewGetKnowledgeTool(store core.KnowledgeStore) Tool {
	return NewFunctionTool(
		GetKnowledgeName,
		"Input: memory ID | Action: retrieve specific data from the shared database by ID | Output: retrieved data",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"memory_id": map[string]any{"type": "string", "description": "ID returned by put_database"},
			},
			"required": []string{"memory_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id, _ := util.StringArg(args, "memory_id")
			id = strings.TrimSpace(id)

			entry, err := store.Get(ctx, id)
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Sprintf("No data found in database with ID: %s", id), nil
			}

			if err != nil {
				return nil, err
			}

			return entry.Content, nil
		},
	)
}

// NewSearchKnowledgeTool returns the search_database tool.
func NewSearchKnowledgeTool(store core.KnowledgeStore) Tool {
	return NewFunctionTool(
		SearchKnowledgeName,
		"Input: search query + limit | Action: search the shared database for relevant information | Output: matching entries with IDs and relevance scores",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "What to look for"},
				"limit": map[string]any{"type": "integer", "description": "Maximum number of results (at most 10)"},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := util.StringArg(args, "query")

			limit, ok := util.IntArg(args, "limit")
			if !ok || limit <= 0 || limit > MaxSearchResults {
				limit = MaxSearchResults
			}

			results, err := store.Search(ctx, query, limit)
			if err != nil {
				return nil, err
			}

			if len(results) == 0 {
				return fmt.Sprintf("No relevant knowledge found for query: '%s'", query), nil
			}

			return FormatSearchResults(results), nil
		},
	)
}

// FormatSearchResults renders search hits for the model, one block per entry.
func FormatSearchResults(results []core.SearchResult) string {
	var b strings.Builder

	b.WriteString("The query results for the database:")

	for _, r := range results {
		fmt.Fprintf(&b, "\n\n[ID: %s] (relevance %.2f", r.Entry.ID, r.Score)

		if r.Entry.Importance != core.ImportanceNone {
			fmt.Fprintf(&b, ", importance %s", r.Entry.Importance)
		}

		if r.Entry.Tags != "" {
			fmt.Fprintf(&b, ", tags %s", r.Entry.Tags)
		}

		b.WriteString(")\n")
		b.WriteString(r.Entry.Content)
	}

	return b.String()
}

// KnowledgeTools returns the read and write knowledge tools for one agent.
func KnowledgeTools(store core.KnowledgeStore, agent string) []Tool {
	return []Tool{
		NewPutKnowledgeTool(store, agent),
		NewGetKnowledgeTool(store),
		NewSearchKnowledgeTool(store),
	}
}
