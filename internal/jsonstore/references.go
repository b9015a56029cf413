package jsonstore

import (
	"slices"
	"strconv"
)

// RefKind distinguishes enforced foreign keys from soft row references.
type RefKind string

const (
	ForeignKey RefKind = "foreignKey"
	Reference  RefKind = "reference"
)

// Declaration is a schema level pointer to another table.
type Declaration struct {
	Node  NodeID
	Path  Path
	Kind  RefKind
	Table string
}

// RowReference is a concrete pointer found in a row value.
type RowReference struct {
	Kind  RefKind `json:"kind"`
	Table string  `json:"table"`
	RowID string  `json:"rowId"`
	Path  string  `json:"path"`
}

// Declarations lists every foreignKey and reference marker in the schema.
func (s *Schema) Declarations() []Declaration {
	var out []Declaration
	s.Walk(func(id NodeID, path Path) {
		n := &s.nodes[id]
		if n.Kind != String {
			return
		}
		if n.ForeignKey != "" {
			out = append(out, Declaration{Node: id, Path: path, Kind: ForeignKey, Table: n.ForeignKey})
		}
		if n.Reference != "" {
			out = append(out, Declaration{Node: id, Path: path, Kind: Reference, Table: n.Reference})
		}
	})
	return out
}

// ForeignKeyTables returns the distinct tables targeted by foreign keys.
func (s *Schema) ForeignKeyTables() []string {
	var tables []string
	for _, d := range s.Declarations() {
		if d.Kind == ForeignKey && !slices.Contains(tables, d.Table) {
			tables = append(tables, d.Table)
		}
	}
	slices.Sort(tables)
	return tables
}

// References extracts every non empty foreign key and reference value of a row.
func (st *Store) References(rowID string) []RowReference {
	v, ok := st.rows[rowID]
	if !ok {
		return nil
	}
	var out []RowReference
	st.collectReferences(v, "", &out)
	return out
}

func (st *Store) collectReferences(v *Value, at string, out *[]RowReference) {
	switch v.Kind {
	case String:
		if v.str == "" {
			return
		}
		n := st.schema.Node(v.Node)
		if n.ForeignKey != "" {
			*out = append(*out, RowReference{Kind: ForeignKey, Table: n.ForeignKey, RowID: v.str, Path: at})
		}
		if n.Reference != "" {
			*out = append(*out, RowReference{Kind: Reference, Table: n.Reference, RowID: v.str, Path: at})
		}
	case Object:
		for _, name := range sortedNames(v.fields) {
			st.collectReferences(v.fields[name], at+"/"+pointerEscaper.Replace(name), out)
		}
	case Array:
		for i, item := range v.items {
			st.collectReferences(item, at+"/"+strconv.Itoa(i), out)
		}
	}
}

// CountReferences counts values pointing at rowID of table. A value whose
// node declares both a foreignKey and a reference to table counts once.
func (st *Store) CountReferences(table, rowID string) int {
	count := 0
	seen := make(map[NodeID]bool)
	for _, d := range st.schema.Declarations() {
		if d.Table != table || seen[d.Node] {
			continue
		}
		seen[d.Node] = true
		for _, b := range st.bound[d.Node] {
			if b.value.str == rowID {
				count++
			}
		}
	}
	return count
}

// ReplaceReferences rewrites foreign key values pointing at from in table to
// to. It returns the rows that changed.
func (st *Store) ReplaceReferences(table, from, to string) []string {
	var changed []string
	for _, d := range st.schema.Declarations() {
		if d.Kind != ForeignKey || d.Table != table {
			continue
		}
		for _, b := range st.bound[d.Node] {
			if b.value.str != from {
				continue
			}
			b.value.str = to
			if !slices.Contains(changed, b.row) {
				changed = append(changed, b.row)
			}
		}
	}
	slices.Sort(changed)
	return changed
}
