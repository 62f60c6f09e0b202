package knowledge

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/hupe1980/taskforce/core"
)

// DefaultCollection is the chromem collection used when none is named.
const DefaultCollection = "knowledge"

// ChromemIndex ranks entries by embedding similarity using an in-memory
// chromem-go collection.
type ChromemIndex struct {
	collection *chromem.Collection
}

// NewChromemIndex creates a vector index that embeds content with embed.
func NewChromemIndex(collection string, embed chromem.EmbeddingFunc) (*ChromemIndex, error) {
	if embed == nil {
		return nil, fmt.Errorf("knowledge: chromem index requires an embedding function")
	}

	if collection == "" {
		collection = DefaultCollection
	}

	db := chromem.NewDB()

	c, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("knowledge: create chromem collection: %w", err)
	}

	return &ChromemIndex{collection: c}, nil
}

// Add embeds and stores entry. Empty content has nothing to embed and is
// only reachable by id.
func (c *ChromemIndex) Add(ctx context.Context, entry core.KnowledgeEntry) error {
	if entry.Content == "" {
		return nil
	}

	return c.collection.AddDocument(ctx, chromem.Document{
		ID:      entry.ID,
		Content: entry.Content,
		Metadata: map[string]string{
			"tags":       entry.Tags,
			"importance": string(entry.Importance),
		},
	})
}

// Query returns the entries most similar to query.
func (c *ChromemIndex) Query(ctx context.Context, query string, limit int) ([]Hit, error) {
	// chromem rejects n larger than the collection.
	n := min(limit, c.collection.Count())
	if n <= 0 {
		return nil, nil
	}

	res, err := c.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res))
	for _, r := range res {
		hits = append(hits, Hit{ID: r.ID, Score: float64(r.Similarity)})
	}

	return hits, nil
}
