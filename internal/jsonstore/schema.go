package jsonstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// NodeID addresses a node in the schema arena.
type NodeID int

// NoNode is the parent of the root and of detached nodes.
const NoNode NodeID = -1

// Node is one schema node. Parent links are arena indices, children are
// owned through Properties or Items.
type Node struct {
	Kind        Kind
	Parent      NodeID
	Name        string
	Title       string
	Description string
	Default     any
	HasDefault  bool
	ReadOnly    bool
	Deprecated  bool

	// String only.
	ForeignKey string
	Reference  string

	// Object only.
	Properties map[string]NodeID
	Required   []string

	// Array only.
	Items NodeID
}

// Schema is an arena backed tree mirroring a schema document. Nodes removed
// from the tree stay in the arena, detached, so that later edits in the same
// batch can still look them up.
type Schema struct {
	nodes []Node
	root  NodeID
}

// ParseSchema decodes a schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, revisionerrors.NewValidationError("schema", revisionerrors.FieldError{
			Field:   "(root)",
			Message: err.Error(),
			Type:    "json",
		})
	}
	return SchemaFromPlain(plain)
}

// SchemaFromPlain builds a Schema from a decoded schema document.
func SchemaFromPlain(plain any) (*Schema, error) {
	s := &Schema{root: NoNode}
	root, err := s.Build(plain)
	if err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// Build adds a detached subtree described by plain to the arena.
func (s *Schema) Build(plain any) (NodeID, error) {
	return s.build(plain, "")
}

func (s *Schema) build(plain any, at string) (NodeID, error) {
	field := at
	if field == "" {
		field = "(root)"
	}
	invalid := func(format string, args ...any) error {
		return revisionerrors.NewValidationError("schema", revisionerrors.FieldError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Type:    "schema",
		})
	}

	m, ok := plain.(map[string]any)
	if !ok {
		return NoNode, invalid("schema node must be an object")
	}
	typ, _ := m["type"].(string)
	kind := Kind(typ)
	if !kind.Valid() {
		return NoNode, invalid("unsupported type %q", typ)
	}

	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, Node{Kind: kind, Parent: NoNode, Items: NoNode})

	n := Node{Kind: kind, Parent: NoNode, Items: NoNode}
	n.Title, _ = m["title"].(string)
	n.Description, _ = m["description"].(string)
	n.ReadOnly, _ = m["readOnly"].(bool)
	n.Deprecated, _ = m["deprecated"].(bool)
	if def, ok := m["default"]; ok {
		n.Default = copyPlain(def)
		n.HasDefault = true
	}

	switch kind {
	case Object:
		props, _ := m["properties"].(map[string]any)
		n.Properties = make(map[string]NodeID, len(props))
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, err := s.build(props[name], at+"/properties/"+pointerEscaper.Replace(name))
			if err != nil {
				return NoNode, err
			}
			s.nodes[child].Parent = id
			s.nodes[child].Name = name
			n.Properties[name] = child
		}
		required, _ := m["required"].([]any)
		for _, r := range required {
			name, ok := r.(string)
			if !ok {
				return NoNode, invalid("required entries must be strings")
			}
			if _, ok := n.Properties[name]; !ok {
				return NoNode, invalid("required property %q is not defined in properties", name)
			}
			if !slices.Contains(n.Required, name) {
				n.Required = append(n.Required, name)
			}
		}
		// Values always carry every field, so an optional field could not
		// survive a round trip.
		for _, name := range names {
			if !slices.Contains(n.Required, name) {
				return NoNode, invalid("property %q must be listed in required", name)
			}
		}
	case Array:
		items, ok := m["items"]
		if !ok {
			return NoNode, invalid("array node requires items")
		}
		child, err := s.build(items, at+"/items")
		if err != nil {
			return NoNode, err
		}
		s.nodes[child].Parent = id
		n.Items = child
	case String:
		n.ForeignKey, _ = m["foreignKey"].(string)
		n.Reference, _ = m["reference"].(string)
	}

	s.nodes[id] = n
	return id, nil
}

// Root returns the root node id.
func (s *Schema) Root() NodeID {
	return s.root
}

// Node returns the node for id. The pointer is valid until the next Build.
func (s *Schema) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return &s.nodes[id]
}

// Resolve walks path from the root.
func (s *Schema) Resolve(path Path) (NodeID, error) {
	id := s.root
	for i, seg := range path {
		n := &s.nodes[id]
		if seg.Items {
			if n.Kind != Array {
				return NoNode, fmt.Errorf("%w: %s is not an array", revisionerrors.MalformedPatch, path[:i+1])
			}
			id = n.Items
			continue
		}
		if n.Kind != Object {
			return NoNode, fmt.Errorf("%w: %s is not an object", revisionerrors.MalformedPatch, path[:i])
		}
		child, ok := n.Properties[seg.Name]
		if !ok {
			return NoNode, fmt.Errorf("%w: %s does not exist", revisionerrors.MalformedPatch, path[:i+1])
		}
		id = child
	}
	return id, nil
}

// PathOf recomputes the pointer of an attached node from parent links.
func (s *Schema) PathOf(id NodeID) Path {
	var rev Path
	for id != s.root && id != NoNode {
		n := &s.nodes[id]
		parent := &s.nodes[n.Parent]
		if parent.Kind == Array {
			rev = append(rev, Segment{Items: true})
		} else {
			rev = append(rev, Segment{Name: n.Name})
		}
		id = n.Parent
	}
	slices.Reverse(rev)
	return rev
}

// Attached reports whether id is reachable from the root.
func (s *Schema) Attached(id NodeID) bool {
	for id != NoNode {
		if id == s.root {
			return true
		}
		id = s.nodes[id].Parent
	}
	return false
}

// Plain returns the schema document.
func (s *Schema) Plain() map[string]any {
	return s.NodePlain(s.root)
}

// NodePlain returns the schema document of the subtree at id.
func (s *Schema) NodePlain(id NodeID) map[string]any {
	n := &s.nodes[id]
	m := map[string]any{"type": string(n.Kind)}
	if n.Title != "" {
		m["title"] = n.Title
	}
	if n.Description != "" {
		m["description"] = n.Description
	}
	if n.ReadOnly {
		m["readOnly"] = true
	}
	if n.Deprecated {
		m["deprecated"] = true
	}
	if n.HasDefault {
		m["default"] = copyPlain(n.Default)
	}

	switch n.Kind {
	case Object:
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = s.NodePlain(child)
		}
		required := make([]any, 0, len(n.Required))
		for _, r := range n.Required {
			required = append(required, r)
		}
		m["properties"] = props
		m["required"] = required
		m["additionalProperties"] = false
	case Array:
		m["items"] = s.NodePlain(n.Items)
	case String:
		if n.ForeignKey != "" {
			m["foreignKey"] = n.ForeignKey
		}
		if n.Reference != "" {
			m["reference"] = n.Reference
		}
	}
	return m
}

// SameShape reports whether the subtrees at a and b describe the same document.
func (s *Schema) SameShape(a, b NodeID) bool {
	return reflect.DeepEqual(s.NodePlain(a), s.NodePlain(b))
}

// DefaultPlain returns the default value of the subtree at id.
func (s *Schema) DefaultPlain(id NodeID) any {
	n := &s.nodes[id]
	switch n.Kind {
	case Object:
		out := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			out[name] = s.DefaultPlain(child)
		}
		return out
	case Array:
		if arr, ok := n.Default.([]any); ok && n.HasDefault {
			return copyPlain(arr)
		}
		return []any{}
	case String:
		if v, ok := n.Default.(string); ok && n.HasDefault {
			return v
		}
		return ""
	case Number:
		if v, ok := toFloat(n.Default); ok && n.HasDefault {
			return v
		}
		return float64(0)
	case Boolean:
		if v, ok := n.Default.(bool); ok && n.HasDefault {
			return v
		}
		return false
	}
	return nil
}

// Walk visits every attached node depth first, properties in name order.
func (s *Schema) Walk(fn func(id NodeID, path Path)) {
	s.walk(s.root, Path{}, fn)
}

func (s *Schema) walk(id NodeID, path Path, fn func(NodeID, Path)) {
	fn(id, path)
	n := &s.nodes[id]
	switch n.Kind {
	case Object:
		for _, name := range sortedNames(n.Properties) {
			s.walk(n.Properties[name], append(slices.Clone(path), Segment{Name: name}), fn)
		}
	case Array:
		s.walk(n.Items, append(slices.Clone(path), Segment{Items: true}), fn)
	}
}

func (s *Schema) setProperty(obj NodeID, name string, child NodeID) {
	n := &s.nodes[obj]
	n.Properties[name] = child
	if !slices.Contains(n.Required, name) {
		n.Required = append(n.Required, name)
	}
	s.nodes[child].Parent = obj
	s.nodes[child].Name = name
}

func (s *Schema) unsetProperty(obj NodeID, name string) NodeID {
	n := &s.nodes[obj]
	child := n.Properties[name]
	delete(n.Properties, name)
	n.Required = slices.DeleteFunc(n.Required, func(r string) bool { return r == name })
	s.nodes[child].Parent = NoNode
	return child
}

func (s *Schema) renameProperty(obj NodeID, from, to string) {
	n := &s.nodes[obj]
	child := n.Properties[from]
	delete(n.Properties, from)
	n.Properties[to] = child
	for i, r := range n.Required {
		if r == from {
			n.Required[i] = to
		}
	}
	s.nodes[child].Name = to
}

// replaceNode swaps next into the position held by old.
func (s *Schema) replaceNode(old, next NodeID) {
	parent := s.nodes[old].Parent
	name := s.nodes[old].Name
	switch {
	case old == s.root:
		s.root = next
	case s.nodes[parent].Kind == Array:
		s.nodes[parent].Items = next
	default:
		s.nodes[parent].Properties[name] = next
	}
	s.nodes[next].Parent = parent
	s.nodes[next].Name = name
	s.nodes[old].Parent = NoNode
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
