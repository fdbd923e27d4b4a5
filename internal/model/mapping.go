package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// KeyPath is the target path whose column carries the business key.
const KeyPath = "/ocid"

// PathMapping binds one source column to one target path.
type PathMapping struct {
	Column  string `yaml:"column"`
	Path    string `yaml:"path"`
	Block   string `yaml:"block,omitempty"`
	Publish bool   `yaml:"publish"`
}

// MappingTable holds the column to path mappings in template order.
type MappingTable struct {
	mappings []PathMapping
	byColumn map[string][]int
}

// NewMappingTable normalizes column names and indexes the mappings.
func NewMappingTable(mappings []PathMapping) *MappingTable {
	t := &MappingTable{
		mappings: make([]PathMapping, 0, len(mappings)),
		byColumn: make(map[string][]int),
	}

	for _, m := range mappings {
		m.Column = NormalizeColumn(m.Column)
		if m.Column == "" || m.Path == "" {
			continue
		}

		t.byColumn[m.Column] = append(t.byColumn[m.Column], len(t.mappings))
		t.mappings = append(t.mappings, m)
	}

	return t
}

// All returns the mappings in template order.
func (t *MappingTable) All() []PathMapping {
	out := make([]PathMapping, len(t.mappings))
	copy(out, t.mappings)

	return out
}

// Len returns the number of mappings.
func (t *MappingTable) Len() int {
	return len(t.mappings)
}

// PathsFor returns every mapping of column.
func (t *MappingTable) PathsFor(column string) []PathMapping {
	idx := t.byColumn[NormalizeColumn(column)]

	out := make([]PathMapping, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.mappings[i])
	}

	return out
}

// Columns returns the distinct mapped columns in template order.
func (t *MappingTable) Columns() []string {
	seen := make(map[string]bool, len(t.byColumn))
	out := make([]string, 0, len(t.byColumn))

	for _, m := range t.mappings {
		if !seen[m.Column] {
			seen[m.Column] = true
			out = append(out, m.Column)
		}
	}

	return out
}

// KeyMapping returns the mapping of the business key column.
func (t *MappingTable) KeyMapping() (PathMapping, error) {
	for _, m := range t.mappings {
		if m.Path == KeyPath {
			return m, nil
		}
	}

	return PathMapping{}, &ConfigError{Component: "mapping", Err: ErrNoKeyMapping}
}

// NormalizeColumn collapses runs of whitespace and case-folds a column name so
// that "Tender  Title" and "tender title" address the same column.
func NormalizeColumn(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
