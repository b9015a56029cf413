package jsonstore

// Value is a node of the value tree. Its shape always matches the schema
// node it is bound to.
type Value struct {
	Node NodeID
	Kind Kind

	str    string
	num    float64
	flag   bool
	items  []*Value
	fields map[string]*Value
}

// FromPlain binds a plain JSON value to the root of s. Missing fields take
// their defaults and mismatched types go through the transformation table.
func FromPlain(s *Schema, plain any) *Value {
	return s.value(s.root, plain)
}

func (s *Schema) value(id NodeID, plain any) *Value {
	n := &s.nodes[id]
	kind, ok := kindOf(plain)
	switch {
	case !ok:
		plain = s.DefaultPlain(id)
	case kind != n.Kind:
		plain = Transform(kind, n.Kind, plain, s.DefaultPlain(id))
		if k, _ := kindOf(plain); k != n.Kind {
			plain = s.DefaultPlain(id)
		}
	}

	v := &Value{Node: id, Kind: n.Kind}
	switch n.Kind {
	case Object:
		m, _ := plain.(map[string]any)
		v.fields = make(map[string]*Value, len(n.Properties))
		for name, child := range n.Properties {
			v.fields[name] = s.value(child, m[name])
		}
	case Array:
		arr, _ := plain.([]any)
		v.items = make([]*Value, 0, len(arr))
		for _, el := range arr {
			v.items = append(v.items, s.value(n.Items, el))
		}
	case String:
		v.str, _ = plain.(string)
	case Number:
		v.num, _ = toFloat(plain)
	case Boolean:
		v.flag, _ = plain.(bool)
	}
	return v
}

// Plain converts the value tree back into a plain JSON value.
func (v *Value) Plain() any {
	switch v.Kind {
	case Object:
		out := make(map[string]any, len(v.fields))
		for name, f := range v.fields {
			out[name] = f.Plain()
		}
		return out
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Plain()
		}
		return out
	case String:
		return v.str
	case Number:
		return v.num
	case Boolean:
		return v.flag
	}
	return nil
}

// Field returns the named field of an object value.
func (v *Value) Field(name string) (*Value, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// Items returns the elements of an array value.
func (v *Value) Items() []*Value {
	return v.items
}

// Str returns the content of a string value.
func (v *Value) Str() string {
	return v.str
}

// Num returns the content of a number value.
func (v *Value) Num() float64 {
	return v.num
}

// Bool returns the content of a boolean value.
func (v *Value) Bool() bool {
	return v.flag
}
