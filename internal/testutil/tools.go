package testutil

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/taskforce/tool"
)

// EchoTool returns its "text" argument unchanged.
func EchoTool() *tool.FunctionTool {
	return tool.NewFunctionTool("echo", "Echo the given text.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to echo"},
			},
			"required": []string{"text"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		})
}

// FailingTool always returns err.
func FailingTool(name string, err error) *tool.FunctionTool {
	return tool.NewFunctionTool(name, "Always fails.", nil,
		func(context.Context, map[string]any) (any, error) {
			return nil, err
		})
}

// PanicTool panics with msg on every call.
func PanicTool(name, msg string) *tool.FunctionTool {
	return tool.NewFunctionTool(name, "Always panics.", nil,
		func(context.Context, map[string]any) (any, error) {
			panic(msg)
		})
}

// BlockingTool waits for ctx to end and returns its error.
func BlockingTool(name string) *tool.FunctionTool {
	return tool.NewFunctionTool(name, "Blocks until cancelled.", nil,
		func(ctx context.Context, _ map[string]any) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
}

// CountingTool returns a tool that counts its invocations in n and
// returns "ok".
func CountingTool(name string, n *atomic.Int64) *tool.FunctionTool {
	return tool.NewFunctionTool(name, "Counts calls.", nil,
		func(context.Context, map[string]any) (any, error) {
			n.Add(1)
			return "ok", nil
		})
}

// ErrBoom is a canned error for failure-path tests.
var ErrBoom = errors.New("boom")
