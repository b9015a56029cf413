package migration

import (
	"fmt"
	"time"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// Apply runs patches in order against the schema of st, transforming every
// bound row value as it goes. The batch is checked up front for unknown ops
// and malformed paths. An error returned after that leaves st partially
// edited and the caller must discard it.
func Apply(st *jsonstore.Store, patches []Patch) error {
	batch, err := parse(patches)
	if err != nil {
		return err
	}
	for i, p := range batch {
		if err := apply(st, p); err != nil {
			return fmt.Errorf("patch %d (%s %s): %w", i, p.Op, p.Path, err)
		}
	}
	return nil
}

// ApplyAndRecord applies patches and appends an update record with the
// hash of the resulting schema to log. It returns that hash.
func ApplyAndRecord(log *Log, st *jsonstore.Store, patches []Patch, now time.Time) (string, error) {
	if err := Apply(st, patches); err != nil {
		return "", err
	}
	hash, err := jsonstore.Hash(st.Schema().Plain())
	if err != nil {
		return "", err
	}
	log.AppendUpdate(hash, now, patches)
	return hash, nil
}

func apply(st *jsonstore.Store, p parsed) error {
	switch p.Op {
	case OpAdd:
		return add(st, p.path, p.Value)
	case OpRemove:
		return remove(st, p.path)
	case OpReplace:
		return replace(st, p.path, p.Value)
	case OpMove:
		return move(st, p.from, p.path)
	}
	return fmt.Errorf("%w: unknown op %q", revisionerrors.MalformedPatch, p.Op)
}

func add(st *jsonstore.Store, path jsonstore.Path, value any) error {
	schema := st.Schema()
	node, err := schema.Build(value)
	if err != nil {
		return err
	}
	if path.IsRoot() {
		return st.Migrate(schema.Root(), node)
	}

	parentPath, last, _ := path.Parent()
	parent, err := schema.Resolve(parentPath)
	if err != nil {
		return err
	}
	if last.Items {
		return st.MigrateItems(parent, node)
	}
	if n := schema.Node(parent); n.Kind == jsonstore.Object {
		if _, exists := n.Properties[last.Name]; exists {
			return st.MigrateProperty(parent, last.Name, node)
		}
	}
	return st.AddProperty(parent, last.Name, node)
}

func remove(st *jsonstore.Store, path jsonstore.Path) error {
	parentPath, last, ok := path.Parent()
	if !ok || last.Items {
		return fmt.Errorf("%w: cannot remove %s", revisionerrors.MalformedPatch, path)
	}
	parent, err := st.Schema().Resolve(parentPath)
	if err != nil {
		return err
	}
	_, err = st.RemoveProperty(parent, last.Name)
	return err
}

func replace(st *jsonstore.Store, path jsonstore.Path, value any) error {
	schema := st.Schema()
	old, err := schema.Resolve(path)
	if err != nil {
		return err
	}
	node, err := schema.Build(value)
	if err != nil {
		return err
	}
	return st.Migrate(old, node)
}

// move relocates the property at from to path. Within one object it is a
// rename. Across objects the node is detached and attached again, and its
// values follow it to the destination parent value with the same row and
// ordinal.
func move(st *jsonstore.Store, from, path jsonstore.Path) error {
	if from.Equal(path) {
		return nil
	}
	fromParentPath, fromLast, _ := from.Parent()
	toParentPath, toLast, _ := path.Parent()
	if fromLast.Items || toLast.Items {
		return fmt.Errorf("%w: move only relocates properties", revisionerrors.MalformedPatch)
	}

	schema := st.Schema()
	fromParent, err := schema.Resolve(fromParentPath)
	if err != nil {
		return err
	}
	if _, err := schema.Resolve(from); err != nil {
		return err
	}

	if fromParentPath.Equal(toParentPath) {
		if _, exists := schema.Node(fromParent).Properties[toLast.Name]; exists {
			if _, err := st.RemoveProperty(fromParent, toLast.Name); err != nil {
				return err
			}
		}
		return st.ChangeName(fromParent, fromLast.Name, toLast.Name)
	}

	node, err := st.RemoveProperty(fromParent, fromLast.Name)
	if err != nil {
		return err
	}
	toParent, err := schema.Resolve(toParentPath)
	if err != nil {
		return err
	}
	if n := schema.Node(toParent); n.Kind == jsonstore.Object {
		if _, exists := n.Properties[toLast.Name]; exists {
			if _, err := st.RemoveProperty(toParent, toLast.Name); err != nil {
				return err
			}
		}
	}
	return st.AddProperty(toParent, toLast.Name, node)
}

// RetargetForeignKeys builds the patches that point every foreign key and
// reference declaration aimed at table from to table to.
func RetargetForeignKeys(schema *jsonstore.Schema, from, to string) []Patch {
	var patches []Patch
	seen := make(map[jsonstore.NodeID]bool)
	for _, d := range schema.Declarations() {
		if d.Table != from || seen[d.Node] {
			continue
		}
		seen[d.Node] = true

		value := schema.NodePlain(d.Node)
		if value["foreignKey"] == from {
			value["foreignKey"] = to
		}
		if value["reference"] == from {
			value["reference"] = to
		}
		patches = append(patches, Patch{Op: OpReplace, Path: d.Path.String(), Value: value})
	}
	return patches
}
