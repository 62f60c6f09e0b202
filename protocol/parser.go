package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/taskforce/core"
)

// Region markers.
const (
	PlanOpen    = "<plan>"
	PlanClose   = "</plan>"
	ToolOpen    = "<tool>"
	ToolClose   = "</tool>"
	ResultOpen  = "<result>"
	ResultClose = "</result>"
)

// ErrorKind classifies why no tool call could be extracted.
type ErrorKind int

const (
	// Missing means the reply has no tool region. This is the final-answer signal.
	Missing ErrorKind = iota + 1
	// Malformed means a tool region exists but its body is not a valid call.
	Malformed
)

func (k ErrorKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

var (
	// ErrMissing matches any *ParseError of kind Missing via errors.Is.
	ErrMissing = &ParseError{Kind: Missing}
	// ErrMalformed matches any *ParseError of kind Malformed via errors.Is.
	ErrMalformed = &ParseError{Kind: Malformed}
)

// ParseError describes a reply that did not yield a tool call.
type ParseError struct {
	Kind   ErrorKind
	Reason string
	Body   string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tool call %s", e.Kind)
	}
	return fmt.Sprintf("tool call %s: %s", e.Kind, e.Reason)
}

// Is reports kind equality so the package sentinels work with errors.Is.
func (e *ParseError) Is(target error) bool {
	var t *ParseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Result is the outcome of parsing one model reply.
type Result struct {
	Call    *core.ToolCall
	Plan    string
	HasPlan bool
	// Err is non-nil exactly when Call is nil.
	Err error
}

// IsFinal reports whether the reply carries no executable tool call.
func (r Result) IsFinal() bool { return r.Call == nil }

// IsMalformed reports whether a tool region was present but unusable.
func (r Result) IsMalformed() bool { return errors.Is(r.Err, ErrMalformed) }

// Parse extracts the first plan region and the first tool region from text.
// It never panics and never returns a tool call together with an error.
func Parse(text string) Result {
	var res Result

	if plan, ok, _ := region(text, PlanOpen, PlanClose); ok {
		res.Plan = strings.TrimSpace(plan)
		res.HasPlan = true
	}

	body, ok, opened := region(text, ToolOpen, ToolClose)
	switch {
	case !opened:
		res.Err = &ParseError{Kind: Missing}
		return res
	case !ok:
		res.Err = &ParseError{Kind: Malformed, Reason: "unterminated tool region"}
		return res
	}

	call, err := decodeCall(strings.TrimSpace(body))
	if err != nil {
		res.Err = err
		return res
	}

	res.Call = call

	return res
}

// region returns the text between the first open marker and the first close
// marker following it. opened reports whether the open marker was seen at all.
func region(text, open, close string) (inner string, ok, opened bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", false, false
	}

	rest := text[start+len(open):]

	end := strings.Index(rest, close)
	if end < 0 {
		return "", false, true
	}

	return rest[:end], true, true
}

type wireCall struct {
	Name *string         `json:"name"`
	Args json.RawMessage `json:"args"`
}

func decodeCall(body string) (*core.ToolCall, error) {
	malformed := func(reason string) error {
		return &ParseError{Kind: Malformed, Reason: reason, Body: body}
	}

	if body == "" {
		return nil, malformed("empty tool region")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var wc wireCall
	if err := dec.Decode(&wc); err != nil {
		return nil, malformed(err.Error())
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("trailing data after tool call object")
	}

	if wc.Name == nil || strings.TrimSpace(*wc.Name) == "" {
		return nil, malformed("missing tool name")
	}

	args := map[string]any{}

	raw := bytes.TrimSpace(wc.Args)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '{' {
			return nil, malformed("args must be an object")
		}

		argDec := json.NewDecoder(bytes.NewReader(raw))
		argDec.UseNumber()

		if err := argDec.Decode(&args); err != nil {
			return nil, malformed(err.Error())
		}

		normalizeNumbers(args)
	}

	return &core.ToolCall{Name: strings.TrimSpace(*wc.Name), Args: args}, nil
}

// normalizeNumbers turns json.Number values into int64 when integral and
// float64 otherwise, so handlers see plain Go numbers.
func normalizeNumbers(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}

		if f, err := t.Float64(); err == nil {
			return f
		}

		return t.String()
	case map[string]any:
		normalizeNumbers(t)
		return t
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}

		return t
	default:
		return v
	}
}

// FormatResult wraps tool output in a result region.
func FormatResult(s string) string {
	return ResultOpen + s + ResultClose
}

// FormatToolCall renders a well-formed tool region for call.
func FormatToolCall(call core.ToolCall) string {
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	b, err := json.Marshal(struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	}{call.Name, args})
	if err != nil {
		b = []byte(fmt.Sprintf(`{"name":%q,"args":{}}`, call.Name))
	}

	return ToolOpen + string(b) + ToolClose
}
