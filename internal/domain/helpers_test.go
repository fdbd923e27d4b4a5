package domain

import (
	"encoding/json"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func rowsOf(rows ...m.Row) iter.Seq2[m.Row, error] {
	return func(yield func(m.Row, error) bool) {
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func schemaOf(nodes ...m.SchemaNode) *m.SchemaIndex {
	return m.NewSchemaIndex(append([]m.SchemaNode{{Path: "/ocid", Type: "string"}}, nodes...))
}

func node(path, typ string) m.SchemaNode {
	return m.SchemaNode{Path: path, Type: typ}
}

func published(pairs ...string) *m.MappingTable {
	mappings := []m.PathMapping{{Column: "ocid", Path: "/ocid", Publish: true}}

	for i := 0; i+1 < len(pairs); i += 2 {
		mappings = append(mappings, m.PathMapping{Column: pairs[i], Path: pairs[i+1], Publish: true})
	}

	return m.NewMappingTable(mappings)
}

func toMap(t *testing.T, v json.Marshaler) map[string]any {
	t.Helper()

	b, err := v.MarshalJSON()
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	return out
}

func mustMapper(t *testing.T, table *m.MappingTable, schema *m.SchemaIndex, codelists m.Codelists, opts Options) Mapper {
	t.Helper()

	if opts.Now == nil {
		opts.Now = fixedClock
	}

	mp, err := NewMapper(table, schema, codelists, opts)
	require.NoError(t, err)

	return mp
}
