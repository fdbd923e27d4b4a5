package model

import (
	"fmt"
	"strings"
)

// Kind is the structural kind of a schema node.
type Kind int

const (
	// KindScalar is a leaf value.
	KindScalar Kind = iota
	// KindObject is a nested object.
	KindObject
	// KindArray is an array of objects, or of scalars when the path is a leaf.
	KindArray
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// ParseKind maps a schema type name onto a Kind. Primitive type names map to KindScalar.
func ParseKind(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "object":
		return KindObject
	case "array":
		return KindArray
	default:
		return KindScalar
	}
}

// FormatDateTime marks date-time leaves; their values feed the release date.
const FormatDateTime = "date-time"

// SchemaNode describes one target path.
type SchemaNode struct {
	Path     string `yaml:"path"`
	Kind     Kind   `yaml:"-"`
	Type     string `yaml:"type"`
	Codelist string `yaml:"codelist,omitempty"`
	Format   string `yaml:"format,omitempty"`
}

// SchemaIndex answers structural questions about target paths.
type SchemaIndex struct {
	nodes map[string]SchemaNode
	order []string
}

// NewSchemaIndex builds an index from nodes. Later duplicates replace earlier ones.
func NewSchemaIndex(nodes []SchemaNode) *SchemaIndex {
	idx := &SchemaIndex{nodes: make(map[string]SchemaNode, len(nodes))}

	for _, n := range nodes {
		if n.Type != "" && n.Kind == KindScalar {
			n.Kind = ParseKind(n.Type)
		}

		if _, ok := idx.nodes[n.Path]; !ok {
			idx.order = append(idx.order, n.Path)
		}

		idx.nodes[n.Path] = n
	}

	return idx
}

// Len returns the number of indexed paths.
func (s *SchemaIndex) Len() int {
	return len(s.order)
}

// Nodes returns the nodes in declaration order.
func (s *SchemaIndex) Nodes() []SchemaNode {
	out := make([]SchemaNode, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.nodes[p])
	}

	return out
}

// Lookup returns the node for path.
func (s *SchemaIndex) Lookup(path string) (SchemaNode, bool) {
	n, ok := s.nodes[path]
	return n, ok
}

// KindOf returns the kind of path. Unknown paths are objects.
func (s *SchemaIndex) KindOf(path string) Kind {
	if n, ok := s.nodes[path]; ok {
		return n.Kind
	}

	return KindObject
}

// IsArray reports whether path is declared as an array.
func (s *SchemaIndex) IsArray(path string) bool {
	n, ok := s.nodes[path]
	return ok && n.Kind == KindArray
}

// ContainingArray returns the deepest array path strictly above path.
func (s *SchemaIndex) ContainingArray(path string) (string, bool) {
	segments := SplitPath(path)

	for i := len(segments) - 1; i > 0; i-- {
		candidate := JoinPath(segments[:i]...)
		if s.IsArray(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// HasIdentifier reports whether the array at arrayPath declares an id member.
func (s *SchemaIndex) HasIdentifier(arrayPath string) bool {
	_, ok := s.nodes[arrayPath+PathSeparator+IdentifierField]
	return ok
}

// IsDateTime reports whether path is a date-time leaf.
func (s *SchemaIndex) IsDateTime(path string) bool {
	n, ok := s.nodes[path]
	return ok && n.Format == FormatDateTime
}

// Validate checks that every path in paths is indexed.
func (s *SchemaIndex) Validate(paths []string) error {
	for _, p := range paths {
		if _, ok := s.nodes[p]; !ok {
			return &ConfigError{
				Component: "schema",
				Message:   fmt.Sprintf("path %q is not declared in the schema", p),
			}
		}
	}

	return nil
}
