package jsonstore

import (
	"encoding/json"
)

// Kind is the closed set of schema node types.
type Kind string

const (
	Object  Kind = "object"
	Array   Kind = "array"
	String  Kind = "string"
	Number  Kind = "number"
	Boolean Kind = "boolean"
)

// Kinds lists every supported kind.
var Kinds = []Kind{Object, Array, String, Number, Boolean}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case Object, Array, String, Number, Boolean:
		return true
	}
	return false
}

// kindOf returns the kind of a plain JSON value. Null reports false.
func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case map[string]any:
		return Object, true
	case []any:
		return Array, true
	case string:
		return String, true
	case bool:
		return Boolean, true
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return Number, true
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// copyPlain returns a deep copy of a plain JSON value.
func copyPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = copyPlain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyPlain(val)
		}
		return out
	}
	return v
}
