package domain

import (
	"slices"
	"strings"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Step is one (column, path) write of the execution plan.
type Step struct {
	Column string
	Path   string
	Block  string
}

// Plan is the fixed order in which mapped columns are written for every row.
type Plan struct {
	KeyColumn string
	Steps     []Step
}

// NewPlan validates the mapping table against the schema and derives the write order.
// Mappings not flagged for publishing are dropped unless forcePublish is set.
// Consecutive mappings of the same block are sorted so that identifier fields come
// first, shallower identifiers before deeper ones.
func NewPlan(table *m.MappingTable, schema *m.SchemaIndex, forcePublish bool) (*Plan, error) {
	key, err := table.KeyMapping()
	if err != nil {
		return nil, err
	}

	all := table.All()

	paths := make([]string, 0, len(all))
	for _, pm := range all {
		paths = append(paths, pm.Path)
	}

	if err := schema.Validate(paths); err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(all))

	for _, pm := range all {
		if pm.Path == m.KeyPath {
			continue
		}

		if !pm.Publish && !forcePublish {
			continue
		}

		steps = append(steps, Step{Column: pm.Column, Path: pm.Path, Block: pm.Block})
	}

	return &Plan{KeyColumn: key.Column, Steps: orderBlocks(steps)}, nil
}

func orderBlocks(steps []Step) []Step {
	out := make([]Step, 0, len(steps))

	for start := 0; start < len(steps); {
		end := start + 1
		for end < len(steps) && steps[end].Block == steps[start].Block {
			end++
		}

		group := slices.Clone(steps[start:end])
		if group[0].Block != "" {
			slices.SortStableFunc(group, compareSteps)
		}

		out = append(out, group...)
		start = end
	}

	return out
}

func compareSteps(a, b Step) int {
	aID, bID := isIdentifier(a.Path), isIdentifier(b.Path)

	switch {
	case aID && !bID:
		return -1
	case !aID && bID:
		return 1
	case aID && bID:
		return m.Depth(a.Path) - m.Depth(b.Path)
	default:
		return 0
	}
}

func isIdentifier(path string) bool {
	return strings.HasSuffix(path, m.PathSeparator+m.IdentifierField)
}
