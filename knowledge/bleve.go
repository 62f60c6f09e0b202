package knowledge

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/hupe1980/taskforce/core"
)

// BleveIndex ranks entries with an in-memory bleve full text index over
// content and tags.
type BleveIndex struct {
	index bleve.Index
}

type bleveDocument struct {
	Content    string `json:"content"`
	Tags       string `json:"tags"`
	Importance string `json:"importance"`
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("knowledge: create bleve index: %w", err)
	}

	return &BleveIndex{index: idx}, nil
}

// Add indexes entry under its id.
func (b *BleveIndex) Add(_ context.Context, entry core.KnowledgeEntry) error {
	return b.index.Index(entry.ID, bleveDocument{
		Content:    entry.Content,
		Tags:       entry.Tags,
		Importance: string(entry.Importance),
	})
}

// Query runs a match query against content and tags.
func (b *BleveIndex) Query(ctx context.Context, query string, limit int) ([]Hit, error) {
	q := bleve.NewDisjunctionQuery(
		matchField(query, "content", 1.0),
		matchField(query, "tags", 0.5),
	)

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}

	return hits, nil
}

// Close releases the index.
func (b *BleveIndex) Close() error { return b.index.Close() }

func matchField(text, field string, boost float64) *query.MatchQuery {
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	q.SetBoost(boost)

	return q
}
