package core

// SearchResult represents a retrieved knowledge entry with the relevance
// score assigned by the backing index. Scores are only comparable within one
// result set.
type SearchResult struct {
	Entry KnowledgeEntry
	Score float64
}
