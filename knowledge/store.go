package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/logging"
)

// DefaultMaxResults bounds every Search call.
const DefaultMaxResults = 10

// Hit is one ranked match returned by an Index.
type Hit struct {
	ID    string
	Score float64
}

// Index ranks stored entries for a query. Implementations must be safe for
// concurrent use and return hits most relevant first.
type Index interface {
	Add(ctx context.Context, entry core.KnowledgeEntry) error
	Query(ctx context.Context, query string, limit int) ([]Hit, error)
}

// Options configures a Store.
type Options struct {
	// Index ranks entries for Search. Defaults to an in-memory BleveIndex.
	Index Index
	// MaxResults caps Search results. Defaults to DefaultMaxResults.
	MaxResults int
	// IDFunc allocates entry ids. Defaults to core.ShortID.
	IDFunc func() string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Store is the process-wide Knowledge Store.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]core.KnowledgeEntry
	order      []string
	index      Index
	maxResults int
	newID      func() string
	logger     logging.Logger
}

var _ core.KnowledgeStore = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore(optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		MaxResults: DefaultMaxResults,
		IDFunc:     core.ShortID,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Index == nil {
		idx, err := NewBleveIndex()
		if err != nil {
			return nil, err
		}

		opts.Index = idx
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	if opts.IDFunc == nil {
		opts.IDFunc = core.ShortID
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Store{
		entries:    map[string]core.KnowledgeEntry{},
		index:      opts.Index,
		maxResults: opts.MaxResults,
		newID:      opts.IDFunc,
		logger:     opts.Logger,
	}, nil
}

// Put stores content under a fresh id. The entry is readable by Get as soon
// as Put returns. Indexing failures are logged and only affect Search.
func (s *Store) Put(ctx context.Context, content, tags string, importance core.Importance) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()

	id := s.newID()
	for attempts := 0; ; attempts++ {
		if _, taken := s.entries[id]; !taken {
			break
		}

		if attempts >= 100 {
			s.mu.Unlock()
			return "", fmt.Errorf("knowledge: could not allocate a unique id")
		}

		id = s.newID()
	}

	entry := core.KnowledgeEntry{
		ID:         id,
		Content:    content,
		Tags:       tags,
		Importance: importance,
		CreatedAt:  time.Now().UTC(),
	}

	s.entries[id] = entry
	s.order = append(s.order, id)

	s.mu.Unlock()

	if err := s.index.Add(ctx, entry); err != nil {
		s.logger.Warn("knowledge.index.error", "id", id, "error", err.Error())
	}

	s.logger.Debug("knowledge.put", "id", id, "importance", string(importance), "chars", len(content))

	return id, nil
}

// Get returns the entry stored under id.
func (s *Store) Get(_ context.Context, id string) (core.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return core.KnowledgeEntry{}, fmt.Errorf("knowledge entry %q: %w", id, core.ErrNotFound)
	}

	return entry, nil
}

// Search returns at most limit entries, most relevant first. A non-positive
// limit selects the maximum. An empty query lists the newest entries.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}

	if query == "" {
		return s.newest(limit), nil
	}

	hits, err := s.index.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.SearchResult, 0, len(hits))

	for _, h := range hits {
		if len(results) == limit {
			break
		}

		entry, ok := s.entries[h.ID]
		if !ok {
			continue
		}

		results = append(results, core.SearchResult{Entry: entry, Score: h.Score})
	}

	return results, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *Store) newest(limit int) []core.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.SearchResult, 0, min(limit, len(s.order)))

	for i := len(s.order) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, core.SearchResult{Entry: s.entries[s.order[i]], Score: 1})
	}

	return results
}
