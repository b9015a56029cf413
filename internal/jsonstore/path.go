package jsonstore

import (
	"fmt"
	"strings"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// Segment is one step of a schema pointer: either /properties/<Name> or /items.
type Segment struct {
	Items bool
	Name  string
}

// Path is a root relative schema pointer.
type Path []Segment

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// ParsePath parses a pointer made of alternating /properties/<name> and
// /items segments. The empty string is the root.
func ParsePath(pointer string) (Path, error) {
	if pointer == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("%w: path %q must start with /", revisionerrors.MalformedPatch, pointer)
	}

	parts := strings.Split(pointer[1:], "/")
	path := make(Path, 0, len(parts))
	for i := 0; i < len(parts); {
		switch parts[i] {
		case "properties":
			if i+1 >= len(parts) || parts[i+1] == "" {
				return nil, fmt.Errorf("%w: path %q is missing a property name", revisionerrors.MalformedPatch, pointer)
			}
			path = append(path, Segment{Name: pointerUnescaper.Replace(parts[i+1])})
			i += 2
		case "items":
			path = append(path, Segment{Items: true})
			i++
		default:
			return nil, fmt.Errorf("%w: path %q has unexpected segment %q", revisionerrors.MalformedPatch, pointer, parts[i])
		}
	}
	return path, nil
}

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		if s.Items {
			b.WriteString("/items")
			continue
		}
		b.WriteString("/properties/")
		b.WriteString(pointerEscaper.Replace(s.Name))
	}
	return b.String()
}

// IsRoot reports whether p addresses the schema root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent splits p into its parent path and last segment.
func (p Path) Parent() (Path, Segment, bool) {
	if len(p) == 0 {
		return nil, Segment{}, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Equal reports whether p and q address the same node.
func (p Path) Equal(q Path) bool {
	return len(p) == len(q) && p.HasPrefix(q)
}
