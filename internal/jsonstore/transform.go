package jsonstore

import (
	"math"
	"strconv"
	"strings"
)

// Transformation converts a value of one kind into another. def is the
// default of the destination node and is returned whenever no conversion
// applies.
type Transformation func(old, def any) any

type transformKey struct {
	from Kind
	to   Kind
}

var transformations = map[transformKey]Transformation{
	{Number, String}: func(old, def any) any {
		f, ok := toFloat(old)
		if !ok {
			return def
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	{String, Number}: func(old, def any) any {
		f, err := strconv.ParseFloat(strings.TrimSpace(old.(string)), 64)
		// NaN and the infinities have no JSON encoding.
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		return f
	},
	{Boolean, String}: func(old, def any) any {
		return strconv.FormatBool(old.(bool))
	},
	{String, Boolean}: func(old, def any) any {
		b, err := strconv.ParseBool(strings.TrimSpace(old.(string)))
		if err != nil {
			return def
		}
		return b
	},
	{Number, Boolean}: func(old, def any) any {
		f, _ := toFloat(old)
		return f != 0
	},
	{Boolean, Number}: func(old, def any) any {
		if old.(bool) {
			return float64(1)
		}
		return float64(0)
	},
}

func init() {
	for _, k := range Kinds {
		if k == Array {
			continue
		}
		transformations[transformKey{k, Array}] = wrapInArray
		transformations[transformKey{Array, k}] = firstElement(k)
	}
}

func wrapInArray(old, def any) any {
	return []any{old}
}

func firstElement(to Kind) Transformation {
	return func(old, def any) any {
		arr, _ := old.([]any)
		if len(arr) == 0 {
			return def
		}
		return Transform(kindOrEmpty(arr[0]), to, arr[0], def)
	}
}

func kindOrEmpty(v any) Kind {
	k, _ := kindOf(v)
	return k
}

// Transform converts old from one kind to another through the
// transformation table. Same kind is the identity, unknown pairs reset to def.
func Transform(from, to Kind, old, def any) any {
	if from == to {
		return old
	}
	if t, ok := transformations[transformKey{from, to}]; ok {
		return t(old, def)
	}
	return def
}
