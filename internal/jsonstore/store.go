package jsonstore

import (
	"fmt"
	"slices"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

type binding struct {
	row   string
	value *Value
}

// slot identifies a parent object value by row and by its position among
// the row's values bound to the same schema node.
type slot struct {
	row     string
	ordinal int
}

// Store is a transaction local working copy of one table: its schema and the
// values of its rows. It keeps an index from schema node to every value bound
// to it so structural edits can fan out to all rows in one pass.
type Store struct {
	schema   *Schema
	rows     map[string]*Value
	order    []string
	bound    map[NodeID][]binding
	detached map[NodeID]map[slot]*Value
}

// NewStore returns an empty store over schema.
func NewStore(schema *Schema) *Store {
	return &Store{
		schema:   schema,
		rows:     make(map[string]*Value),
		bound:    make(map[NodeID][]binding),
		detached: make(map[NodeID]map[slot]*Value),
	}
}

// Schema returns the store's schema.
func (st *Store) Schema() *Schema {
	return st.schema
}

// Bind binds the plain data of a row, replacing any previous binding.
func (st *Store) Bind(rowID string, plain any) *Value {
	if old, ok := st.rows[rowID]; ok {
		st.unregister(rowID, old)
	} else {
		st.order = append(st.order, rowID)
	}
	v := FromPlain(st.schema, plain)
	st.rows[rowID] = v
	st.register(rowID, v)
	return v
}

// Row returns the value bound for rowID.
func (st *Store) Row(rowID string) (*Value, bool) {
	v, ok := st.rows[rowID]
	return v, ok
}

// Plain returns the plain data of rowID, nil when unbound.
func (st *Store) Plain(rowID string) any {
	v, ok := st.rows[rowID]
	if !ok {
		return nil
	}
	return v.Plain()
}

// RowIDs returns the bound rows in binding order.
func (st *Store) RowIDs() []string {
	return slices.Clone(st.order)
}

// BoundCount returns how many values are bound to id.
func (st *Store) BoundCount(id NodeID) int {
	return len(st.bound[id])
}

func (st *Store) register(row string, v *Value) {
	st.bound[v.Node] = append(st.bound[v.Node], binding{row: row, value: v})
	switch v.Kind {
	case Object:
		for _, name := range sortedNames(v.fields) {
			st.register(row, v.fields[name])
		}
	case Array:
		for _, item := range v.items {
			st.register(row, item)
		}
	}
}

func (st *Store) unregister(row string, v *Value) {
	st.bound[v.Node] = slices.DeleteFunc(st.bound[v.Node], func(b binding) bool {
		return b.value == v
	})
	switch v.Kind {
	case Object:
		for _, f := range v.fields {
			st.unregister(row, f)
		}
	case Array:
		for _, item := range v.items {
			st.unregister(row, item)
		}
	}
}

func (st *Store) object(obj NodeID) (*Node, error) {
	n := st.schema.Node(obj)
	if n == nil || n.Kind != Object {
		return nil, fmt.Errorf("%w: %s is not an object", revisionerrors.MalformedPatch, st.schema.PathOf(obj))
	}
	return n, nil
}

// AddProperty attaches node under name on the object node obj. Every bound
// object value inherits the value previously detached for the same slot, or
// receives the node's default.
func (st *Store) AddProperty(obj NodeID, name string, node NodeID) error {
	n, err := st.object(obj)
	if err != nil {
		return err
	}
	if _, exists := n.Properties[name]; exists {
		return fmt.Errorf("%w: property %q already exists at %s", revisionerrors.MalformedPatch, name, st.schema.PathOf(obj))
	}

	source := st.inheritSource(name, node)
	st.schema.setProperty(obj, name, node)

	ordinals := make(map[string]int)
	for _, b := range slices.Clone(st.bound[obj]) {
		key := slot{row: b.row, ordinal: ordinals[b.row]}
		ordinals[b.row]++

		var child *Value
		if source != NoNode {
			if prev, ok := st.detached[source][key]; ok {
				child = prev
				if source != node {
					child = st.schema.value(node, prev.Plain())
				}
			}
		}
		if child == nil {
			child = st.schema.value(node, nil)
		}
		b.value.fields[name] = child
		st.register(b.row, child)
	}
	if source != NoNode {
		delete(st.detached, source)
	}
	return nil
}

// inheritSource finds detached values node may take over: its own, or those
// of a detached node with the same name and shape.
func (st *Store) inheritSource(name string, node NodeID) NodeID {
	if _, ok := st.detached[node]; ok {
		return node
	}
	candidates := make([]NodeID, 0, len(st.detached))
	for id := range st.detached {
		candidates = append(candidates, id)
	}
	slices.Sort(candidates)
	slices.Reverse(candidates)
	for _, id := range candidates {
		if st.schema.Node(id).Name == name && st.schema.SameShape(id, node) {
			return id
		}
	}
	return NoNode
}

// RemoveProperty detaches the named property of obj and drops the field
// from every bound object value. The detached node and its values are kept
// for a later AddProperty in the same store.
func (st *Store) RemoveProperty(obj NodeID, name string) (NodeID, error) {
	n, err := st.object(obj)
	if err != nil {
		return NoNode, err
	}
	if _, exists := n.Properties[name]; !exists {
		return NoNode, fmt.Errorf("%w: property %q does not exist at %s", revisionerrors.MalformedPatch, name, st.schema.PathOf(obj))
	}

	child := st.schema.unsetProperty(obj, name)
	slots := make(map[slot]*Value)
	ordinals := make(map[string]int)
	for _, b := range slices.Clone(st.bound[obj]) {
		key := slot{row: b.row, ordinal: ordinals[b.row]}
		ordinals[b.row]++

		v, ok := b.value.fields[name]
		if !ok {
			continue
		}
		delete(b.value.fields, name)
		st.unregister(b.row, v)
		slots[key] = v
	}
	st.detached[child] = slots
	return child, nil
}

// Migrate puts next in place of old and transforms every value bound to old
// into a value of next. Values keep their identity so parents need no update.
func (st *Store) Migrate(old, next NodeID) error {
	if st.schema.Node(old) == nil || st.schema.Node(next) == nil {
		return fmt.Errorf("%w: migrate of unknown node", revisionerrors.InvariantViolation)
	}
	st.schema.replaceNode(old, next)

	for _, b := range slices.Clone(st.bound[old]) {
		plain := b.value.Plain()
		st.unregister(b.row, b.value)
		*b.value = *st.schema.value(next, plain)
		st.register(b.row, b.value)
	}
	return nil
}

// MigrateProperty changes the schema of the named property of obj.
func (st *Store) MigrateProperty(obj NodeID, name string, next NodeID) error {
	n, err := st.object(obj)
	if err != nil {
		return err
	}
	old, ok := n.Properties[name]
	if !ok {
		return fmt.Errorf("%w: property %q does not exist at %s", revisionerrors.MalformedPatch, name, st.schema.PathOf(obj))
	}
	return st.Migrate(old, next)
}

// MigrateItems changes the item schema of the array node arr.
func (st *Store) MigrateItems(arr NodeID, next NodeID) error {
	n := st.schema.Node(arr)
	if n == nil || n.Kind != Array {
		return fmt.Errorf("%w: %s is not an array", revisionerrors.MalformedPatch, st.schema.PathOf(arr))
	}
	return st.Migrate(n.Items, next)
}

// ChangeName renames a property of obj in the schema and in every bound value.
func (st *Store) ChangeName(obj NodeID, from, to string) error {
	n, err := st.object(obj)
	if err != nil {
		return err
	}
	if _, ok := n.Properties[from]; !ok {
		return fmt.Errorf("%w: property %q does not exist at %s", revisionerrors.MalformedPatch, from, st.schema.PathOf(obj))
	}
	if _, ok := n.Properties[to]; ok {
		return fmt.Errorf("%w: property %q already exists at %s", revisionerrors.MalformedPatch, to, st.schema.PathOf(obj))
	}

	st.schema.renameProperty(obj, from, to)
	for _, b := range st.bound[obj] {
		if v, ok := b.value.fields[from]; ok {
			delete(b.value.fields, from)
			b.value.fields[to] = v
		}
	}
	return nil
}
