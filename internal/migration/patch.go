package migration

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// Op is a patch operation.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpMove    Op = "move"
)

// Patch is one schema edit. Path and From are root relative pointers made
// of /properties/<name> and /items segments.
type Patch struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}

// ParsePatches decodes a patch array.
func ParsePatches(data []byte) ([]Patch, error) {
	var patches []Patch
	if err := json.Unmarshal(data, &patches); err != nil {
		return nil, fmt.Errorf("%w: %v", revisionerrors.MalformedPatch, err)
	}
	return patches, nil
}

// parsed is a patch with its pointers resolved to paths.
type parsed struct {
	Patch
	path jsonstore.Path
	from jsonstore.Path
}

// parse checks every patch of a batch before any of them is applied.
func parse(patches []Patch) ([]parsed, error) {
	out := make([]parsed, 0, len(patches))
	for i, p := range patches {
		path, err := jsonstore.ParsePath(p.Path)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		pp := parsed{Patch: p, path: path}

		switch p.Op {
		case OpAdd, OpReplace:
			if p.Value == nil {
				return nil, fmt.Errorf("patch %d: %w: %s requires a value", i, revisionerrors.MalformedPatch, p.Op)
			}
		case OpRemove:
		case OpMove:
			if pp.from, err = jsonstore.ParsePath(p.From); err != nil {
				return nil, fmt.Errorf("patch %d: %w", i, err)
			}
			if pp.from.IsRoot() || pp.path.IsRoot() {
				return nil, fmt.Errorf("patch %d: %w: cannot move the root", i, revisionerrors.MalformedPatch)
			}
			if pp.path.HasPrefix(pp.from) && !pp.path.Equal(pp.from) {
				return nil, fmt.Errorf("patch %d: %w: cannot move %s into itself", i, revisionerrors.MalformedPatch, p.From)
			}
		default:
			return nil, fmt.Errorf("patch %d: %w: unknown op %q", i, revisionerrors.MalformedPatch, p.Op)
		}
		out = append(out, pp)
	}
	return out, nil
}
