package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/core"
)

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	called := false
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		called = true
		return 0, nil
	})

	_, err := tTool.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.False(t, called)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "a", vErr.Field)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	execTool := NewFunctionTool("fail", "Fails", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(context.Background(), nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)

	custom := NewFunctionTool("custom", "", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, NewToolError("custom", "rate limited", "RATE_LIMIT")
	})
	_, err = custom.Call(context.Background(), nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMIT", toolErr.Code)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type echoArgs struct {
		Text string `json:"text" description:"Text to echo"`
	}
	echo := NewFunctionToolFromStruct("echo", "Echo", echoArgs{}, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})

	_, err := echo.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	out, err := echo.Call(context.Background(), map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

// -------------------- Registry Tests --------------------

func echoTool() Tool {
	return NewFunctionTool("echo", "Return text unchanged", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(
		echoTool(),
		NewFunctionTool("fail", "Always fails", nil, func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("disk full")
		}),
		NewFunctionTool("explode", "Panics", nil, func(context.Context, map[string]any) (any, error) {
			panic("kaboom")
		}),
		NewFunctionTool("count", "Returns a struct", nil, func(context.Context, map[string]any) (any, error) {
			return map[string]int{"n": 3}, nil
		}),
	))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"success", "echo", map[string]any{"text": "hello"}, "hello"},
		{"unknown", "nope", nil, "Error: Unknown tool 'nope'"},
		{"handler error", "fail", nil, "Error executing fail: disk full"},
		{"panic", "explode", nil, "Error executing explode: panic: kaboom"},
		{"validation", "echo", map[string]any{}, "Error executing echo: parameter validation failed"},
		{"json result", "count", nil, `{"n":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			assert.NotPanics(t, func() { got = r.Execute(context.Background(), tt.tool, tt.args) })
			assert.True(t, strings.HasPrefix(got, tt.want), "got %q", got)
		})
	}
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	err := r.Register(echoTool())
	assert.ErrorContains(t, err, "duplicate")

	other := NewFunctionTool("other", "", nil, nil)
	err = r.Register(other, NewFunctionTool("other", "", nil, nil))
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len(), "failed registration must not leave partial state")

	assert.Error(t, r.Register(NewFunctionTool(" ", "", nil, nil)))
	assert.Error(t, r.Register(nil))
}

func TestRegistry_NamesAndDescribe(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "No tools available.", r.Describe())

	require.NoError(t, r.Register(
		NewFunctionTool("search", "Search things", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
				"limit": map[string]any{"type": "integer"},
			},
			"required": []string{"query"},
		}, nil),
		echoTool(),
	))

	assert.Equal(t, []string{"echo", "search"}, r.Names())
	assert.Equal(t,
		"- echo(text: string) - Return text unchanged\n- search(query: string, limit?: integer) - Search things",
		r.Describe())

	_, ok := r.Get("search")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentExecute(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("msg-%d", i)
			assert.Equal(t, want, r.Execute(context.Background(), "echo", map[string]any{"text": want}))
		}(i)
	}
	wg.Wait()
}

// -------------------- Stringify Tests --------------------

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{[]byte("bytes"), "bytes"},
		{errors.New("oops"), "oops"},
		{stringer{}, "stringer"},
		{42, "42"},
		{2.5, "2.5"},
		{true, "true"},
		{[]string{"a", "b"}, `["a","b"]`},
		{struct {
			A int `json:"a"`
		}{1}, `{"a":1}`},
		{func() {}, ""},
	}

	for _, tt := range tests {
		got := Stringify(tt.in)
		if tt.want == "" && tt.in != nil {
			assert.NotEmpty(t, got, "fallback formatting for %T", tt.in)
			continue
		}
		assert.Equal(t, tt.want, got)
	}
}

// -------------------- Knowledge Tool Tests --------------------

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]core.KnowledgeEntry
	order   []string
	limits  []int
}

func newFakeStore() *fakeStore { return &fakeStore{entries: map[string]core.KnowledgeEntry{}} }

func (s *fakeStore) Put(_ context.Context, content, tags string, imp core.Importance) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("id%06d", len(s.order))
	s.entries[id] = core.KnowledgeEntry{ID: id, Content: content, Tags: tags, Importance: imp, CreatedAt: time.Now()}
	s.order = append(s.order, id)
	return id, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (core.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return core.KnowledgeEntry{}, fmt.Errorf("knowledge %q: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *fakeStore) Search(_ context.Context, query string, limit int) ([]core.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = append(s.limits, limit)
	var out []core.SearchResult
	ids := append([]string(nil), s.order...)
	sort.Strings(ids)
	for _, id := range ids {
		e := s.entries[id]
		if strings.Contains(e.Content, query) && len(out) < limit {
			out = append(out, core.SearchResult{Entry: e, Score: 1})
		}
	}
	return out, nil
}

func TestKnowledgeTools(t *testing.T) {
	store := newFakeStore()
	r := NewRegistry()
	require.NoError(t, r.Register(KnowledgeTools(store, "worker-1")...))

	ctx := context.Background()

	put := r.Execute(ctx, PutKnowledgeName, map[string]any{"content": "Lisbon has 545k people", "tags": "city", "importance": "HIGH"})
	assert.Equal(t, "Agent worker-1 stored data into database with ID: id000000", put)
	assert.Equal(t, core.ImportanceHigh, store.entries["id000000"].Importance)

	assert.Equal(t, "Lisbon has 545k people", r.Execute(ctx, GetKnowledgeName, map[string]any{"memory_id": "id000000"}))
	assert.Equal(t, "No data found in database with ID: zzz", r.Execute(ctx, GetKnowledgeName, map[string]any{"memory_id": "zzz"}))

	found := r.Execute(ctx, SearchKnowledgeName, map[string]any{"query": "Lisbon", "limit": 50})
	assert.Contains(t, found, "The query results for the database:")
	assert.Contains(t, found, "[ID: id000000] (relevance 1.00, importance high, tags city)")
	assert.Equal(t, MaxSearchResults, store.limits[0])

	assert.Equal(t, "No relevant knowledge found for query: 'Porto'",
		r.Execute(ctx, SearchKnowledgeName, map[string]any{"query": "Porto", "limit": int64(3)}))
	assert.Equal(t, 3, store.limits[1])

	empty := r.Execute(ctx, PutKnowledgeName, map[string]any{"content": ""})
	assert.Contains(t, empty, "stored data into database")
}
