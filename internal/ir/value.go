package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind names used in shape-mismatch diagnostics.
const (
	KindNull   = "null"
	KindString = "string"
	KindNumber = "number"
	KindBool   = "bool"
	KindList   = "list"
	KindObject = "object"
)

// Decode parses a single JSON value with numbers kept as json.Number.
// Trailing non-whitespace data is an error.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// KindOf reports the JSON kind of a decoded value.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case json.Number, float64, float32, int, int64:
		return KindNumber
	case bool:
		return KindBool
	case []any:
		return KindList
	case map[string]any:
		return KindObject
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Truthy reports whether a value counts as populated.
// null, false, zero, "", whitespace-only strings, empty lists and empty
// objects are all unpopulated.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// IsPlaceholder reports whether v is a string carrying a bracketed
// instruction such as "[COMPANY NAME]". Any '[' counts.
func IsPlaceholder(v any) bool {
	s, ok := v.(string)
	return ok && strings.Contains(s, "[")
}

// Text renders a scalar for display. Lists and objects render as compact JSON.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any, map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// AsMap returns v as an object when it is one.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsList returns v as a list when it is one.
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// Clone deep-copies a decoded JSON value. Scalars are returned as-is.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	default:
		return val
	}
}

// CloneMap deep-copies an object. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Lookup walks a dotted path ("entities.company.name") through nested objects.
func Lookup(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
