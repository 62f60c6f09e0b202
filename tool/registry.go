package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/taskforce/internal/util"
	"github.com/hupe1980/taskforce/logging"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger receives one record per execution. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Registry maps tool names to implementations and executes calls with a
// string-in/string-out contract: every outcome, including unknown tools,
// handler errors and panics, is returned as text for the model.
//
// Registration happens before an agent runs; Execute may be called
// concurrently.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Registry{tools: map[string]Tool{}, logger: opts.Logger}
}

// Register adds tools. Empty or duplicate names are configuration errors and
// leave the registry unchanged.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}

	for _, t := range tools {
		if t == nil {
			return errors.New("tool: nil tool")
		}

		name := t.Name()
		if strings.TrimSpace(name) == "" {
			return errors.New("tool: empty tool name")
		}

		if _, dup := r.tools[name]; dup {
			return fmt.Errorf("tool: duplicate tool name %q", name)
		}

		if _, dup := seen[name]; dup {
			return fmt.Errorf("tool: duplicate tool name %q", name)
		}

		seen[name] = struct{}{}
	}

	for _, t := range tools {
		r.tools[t.Name()] = t
	}

	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// Execute runs the named tool and returns its stringified result.
//
//	unknown name        -> "Error: Unknown tool 'name'"
//	error or panic      -> "Error executing name: message"
//	success             -> Stringify(result)
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("tool.unknown", "tool", name)
		return fmt.Sprintf("Error: Unknown tool '%s'", name)
	}

	start := time.Now()

	result, err := r.call(ctx, t, args)

	logging.LogToolCall(r.logger, name, time.Since(start), err)

	if err != nil {
		return fmt.Sprintf("Error executing %s: %s", name, errorMessage(err))
	}

	return Stringify(result)
}

func (r *Registry) call(ctx context.Context, t Tool, args map[string]any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pe := util.NewPanicError(rec)
			r.logger.Error("tool.call.panic", "tool", t.Name(), "recover", rec, "stack", string(pe.Stack))
			result, err = nil, &ToolError{Tool: t.Name(), Message: pe.Error(), Code: CodePanic, Details: pe}
		}
	}()

	if args == nil {
		args = map[string]any{}
	}

	return t.Call(ctx, args)
}

// errorMessage strips the ToolError envelope so the model sees the cause.
func errorMessage(err error) string {
	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.Message != "" {
		return toolErr.Message
	}

	return err.Error()
}

// Describe renders the tool catalogue shown in system prompts, one line per
// tool in name order.
func (r *Registry) Describe() string {
	names := r.Names()
	if len(names) == 0 {
		return "No tools available."
	}

	lines := make([]string, 0, len(names))

	for _, n := range names {
		t, _ := r.Get(n)
		lines = append(lines, fmt.Sprintf("- %s(%s) - %s", n, signature(t.Parameters()), t.Description()))
	}

	return strings.Join(lines, "\n")
}

// signature renders "name: type" pairs, optional ones suffixed with "?".
func signature(schema map[string]any) string {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return ""
	}

	required := map[string]bool{}

	switch req := schema["required"].(type) {
	case []string:
		for _, s := range req {
			required[s] = true
		}
	case []any:
		for _, s := range req {
			if str, ok := s.(string); ok {
				required[str] = true
			}
		}
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if required[keys[i]] != required[keys[j]] {
			return required[keys[i]]
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, 0, len(keys))

	for _, k := range keys {
		typ := "any"
		if p, ok := props[k].(map[string]any); ok {
			if s, ok := p["type"].(string); ok {
				typ = s
			}
		}

		name := k
		if !required[k] {
			name += "?"
		}

		parts = append(parts, name+": "+typ)
	}

	return strings.Join(parts, ", ")
}
