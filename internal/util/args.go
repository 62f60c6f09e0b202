package util

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringArg returns args[key] as a string. Numbers and booleans are
// formatted; a missing key yields "" and false.
func StringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// IntArg returns args[key] as an int. Models frequently send numbers as
// strings, so numeric strings are accepted too.
func IntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}

	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	default:
		return 0, false
	}
}

// ObjectSliceArg returns args[key] as a list of objects. A JSON-encoded
// string holding such a list is decoded as well.
func ObjectSliceArg(args map[string]any, key string) ([]map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing argument %q", key)
	}

	switch t := v.(type) {
	case []map[string]any:
		return t, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("argument %q: element %d is %T, expected object", key, i, item)
			}
			out = append(out, m)
		}
		return out, nil
	case string:
		var out []map[string]any
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return nil, fmt.Errorf("argument %q: invalid JSON list: %w", key, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %q is %T, expected list of objects", key, v)
	}
}
