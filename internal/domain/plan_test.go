package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

func TestNewPlan(t *testing.T) {
	schema := schemaOf(
		node("/tender", "object"),
		node("/tender/title", "string"),
		node("/tender/selectionCriteria/criteria", "array"),
		node("/tender/selectionCriteria/criteria/type", "string"),
		node("/tender/selectionCriteria/criteria/description", "string"),
		node("/tender/selectionCriteria/criteria/id", "string"),
		node("/tender/selectionCriteria/criteria/requirements", "array"),
		node("/tender/selectionCriteria/criteria/requirements/id", "string"),
		node("/planning/rationale", "string"),
	)

	t.Run("excludes the key and gates on publish", func(t *testing.T) {
		table := m.NewMappingTable([]m.PathMapping{
			{Column: "OCID", Path: "/ocid", Publish: true},
			{Column: "title", Path: "/tender/title", Publish: true},
			{Column: "rationale", Path: "/planning/rationale", Publish: false},
		})

		plan, err := NewPlan(table, schema, false)
		require.NoError(t, err)
		assert.Equal(t, "ocid", plan.KeyColumn)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, "/tender/title", plan.Steps[0].Path)

		forced, err := NewPlan(table, schema, true)
		require.NoError(t, err)
		assert.Len(t, forced.Steps, 2)
	})

	t.Run("sorts identifiers first inside a block", func(t *testing.T) {
		table := m.NewMappingTable([]m.PathMapping{
			{Column: "ocid", Path: "/ocid", Publish: true},
			{Column: "title", Path: "/tender/title", Publish: true},
			{Column: "type", Path: "/tender/selectionCriteria/criteria/type", Block: "criteria", Publish: true},
			{Column: "req", Path: "/tender/selectionCriteria/criteria/requirements/id", Block: "criteria", Publish: true},
			{Column: "desc", Path: "/tender/selectionCriteria/criteria/description", Block: "criteria", Publish: true},
			{Column: "cid", Path: "/tender/selectionCriteria/criteria/id", Block: "criteria", Publish: true},
			{Column: "rationale", Path: "/planning/rationale", Publish: true},
		})

		plan, err := NewPlan(table, schema, false)
		require.NoError(t, err)

		var got []string
		for _, s := range plan.Steps {
			got = append(got, s.Column)
		}

		assert.Equal(t, []string{"title", "cid", "req", "type", "desc", "rationale"}, got)
	})

	t.Run("unblocked mappings keep template order", func(t *testing.T) {
		table := published(
			"desc", "/tender/selectionCriteria/criteria/description",
			"cid", "/tender/selectionCriteria/criteria/id",
		)

		plan, err := NewPlan(table, schema, false)
		require.NoError(t, err)
		assert.Equal(t, "desc", plan.Steps[0].Column)
	})

	t.Run("missing key mapping", func(t *testing.T) {
		table := m.NewMappingTable([]m.PathMapping{{Column: "title", Path: "/tender/title", Publish: true}})

		_, err := NewPlan(table, schema, false)
		assert.True(t, errors.Is(err, m.ErrNoKeyMapping))
	})

	t.Run("path missing from schema is a configuration error", func(t *testing.T) {
		_, err := NewPlan(published("x", "/tender/unknown"), schema, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, m.ErrConfig))
	})
}
