package domain

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

func TestMapperScenarioA(t *testing.T) {
	schema := schemaOf(
		node("/buyer", "object"),
		node("/buyer/id", "string"),
		node("/tender", "object"),
		node("/tender/id", "string"),
	)
	mp := mustMapper(t, published("buyerID", "/buyer/id", "tenderID", "/tender/id"), schema, nil, Options{OCIDPrefix: "ocds-abc"})

	releases, err := mp.MapAll(context.Background(), rowsOf(m.Row{"BuyerID": "B1", "TenderID": "T1", "ocid": "OC1"}))
	require.NoError(t, err)
	require.Len(t, releases, 1)

	got := toMap(t, releases[0])
	assert.Equal(t, map[string]any{"id": "B1"}, got["buyer"])
	assert.Equal(t, map[string]any{"id": "T1"}, got["tender"])
	assert.Equal(t, "ocds-abc-OC1", got["ocid"])
	assert.Equal(t, []any{"tender"}, got["tag"])
	assert.Equal(t, "tender", got["initiationType"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["date"])
	assert.Equal(t, releases[0].ID, got["id"])
}

func TestMapperScenarioB(t *testing.T) {
	schema := schemaOf(
		node("/contracts", "array"),
		node("/contracts/id", "string"),
		node("/contracts/milestones", "array"),
		node("/contracts/milestones/id", "string"),
	)
	mp := mustMapper(t, published("contract id", "/contracts/id", "milestone id", "/contracts/milestones/id"), schema, nil, Options{})

	releases, err := mp.MapAll(context.Background(), rowsOf(
		m.Row{"ocid": "OC1", "contract id": "C1", "milestone id": "M1"},
		m.Row{"ocid": "OC1", "contract id": "C1", "milestone id": "M2"},
	))
	require.NoError(t, err)
	require.Len(t, releases, 1)

	contracts := toMap(t, releases[0])["contracts"].([]any)
	require.Len(t, contracts, 1)
	assert.Equal(t, []any{
		map[string]any{"id": "M1"},
		map[string]any{"id": "M2"},
	}, contracts[0].(map[string]any)["milestones"])
	assert.Equal(t, []string{m.TagContract}, releases[0].Tag)
}

func TestMapperScenarioC(t *testing.T) {
	schema := m.NewSchemaIndex([]m.SchemaNode{
		{Path: "/ocid", Type: "string"},
		{Path: "/tender/title", Type: "string"},
		{Path: "/tender/status", Type: "string", Codelist: "status"},
	})
	codelists := m.Codelists{}
	codelists.Add("status", "1", "active")

	stats := NewStats(nil)
	mp := mustMapper(t, published("title", "/tender/title", "status", "/tender/status"), schema, codelists, Options{Metrics: stats})

	releases, err := mp.MapAll(context.Background(), rowsOf(
		m.Row{"ocid": "OC1", "title": "t", "status": "1"},
		m.Row{"ocid": "OC2", "title": "t", "status": "9"},
	))
	require.NoError(t, err)
	require.Len(t, releases, 2)

	assert.Equal(t, "active", toMap(t, releases[0])["tender"].(map[string]any)["status"])
	assert.NotContains(t, toMap(t, releases[1])["tender"], "status")

	_, _, dropped, _, _ := stats.Snapshot()
	assert.Equal(t, 1, dropped)
}

func TestMapperScenarioD(t *testing.T) {
	schema := schemaOf(node("/tender/title", "string"))
	mp := mustMapper(t, published("title", "/tender/title"), schema, nil, Options{OCIDPrefix: "p"})

	releases, err := mp.MapAll(context.Background(), rowsOf(
		m.Row{"ocid": "OC1", "title": "a"},
		m.Row{"ocid": "OC1", "title": "b"},
		m.Row{"ocid": "OC2", "title": "c"},
		m.Row{"ocid": "OC2", "title": "d"},
	))
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, "p-OC1", releases[0].OCID)
	assert.Equal(t, "p-OC2", releases[1].OCID)
}

func TestMapperBoundaries(t *testing.T) {
	schema := schemaOf(
		node("/tender/title", "string"),
		node("/tender/items", "array"),
		node("/tender/items/id", "string"),
		node("/tender/items/description", "string"),
	)
	table := published("title", "/tender/title", "item", "/tender/items/id", "desc", "/tender/items/description")

	t.Run("non contiguous keys produce separate releases", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})

		releases, err := mp.MapAll(context.Background(), rowsOf(
			m.Row{"ocid": "OC1", "title": "a"},
			m.Row{"ocid": "OC2", "title": "b"},
			m.Row{"ocid": "OC1", "title": "c"},
		))
		require.NoError(t, err)
		assert.Len(t, releases, 3)
	})

	t.Run("rows sharing an item id build one element", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})

		rows := make([]m.Row, 0, 6)
		for range 6 {
			rows = append(rows, m.Row{"ocid": "OC1", "item": "I1", "desc": "d"})
		}

		releases, err := mp.MapAll(context.Background(), rowsOf(rows...))
		require.NoError(t, err)
		require.Len(t, releases, 1)

		items := toMap(t, releases[0])["tender"].(map[string]any)["items"]
		assert.Equal(t, []any{map[string]any{"id": "I1", "description": "d"}}, items)
	})

	t.Run("rows without a key are skipped", func(t *testing.T) {
		stats := NewStats(nil)
		mp := mustMapper(t, table, schema, nil, Options{Metrics: stats})

		releases, err := mp.MapAll(context.Background(), rowsOf(
			m.Row{"ocid": "", "title": "lost"},
			m.Row{"ocid": "OC1", "title": "kept"},
			m.Row{"title": "lost"},
		))
		require.NoError(t, err)
		require.Len(t, releases, 1)

		rows, skipped, _, emitted, tags := stats.Snapshot()
		assert.Equal(t, 3, rows)
		assert.Equal(t, 2, skipped)
		assert.Equal(t, 1, emitted)
		assert.Equal(t, 1, tags[m.TagTender])
	})

	t.Run("identical input gives identical ids", func(t *testing.T) {
		input := []m.Row{
			{"ocid": "OC1", "title": "a", "item": "I1"},
			{"ocid": "OC1", "item": "I2", "desc": "x"},
		}

		first, err := mustMapper(t, table, schema, nil, Options{}).MapAll(context.Background(), rowsOf(input...))
		require.NoError(t, err)

		second, err := mustMapper(t, table, schema, nil, Options{}).MapAll(context.Background(), rowsOf(input...))
		require.NoError(t, err)

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
	})

	t.Run("ids do not depend on the clock", func(t *testing.T) {
		input := m.Row{"ocid": "OC1", "title": "a"}
		later := func() time.Time { return fixedNow.Add(90 * time.Minute) }

		first, err := mustMapper(t, table, schema, nil, Options{}).MapAll(context.Background(), rowsOf(input))
		require.NoError(t, err)

		second, err := mustMapper(t, table, schema, nil, Options{Now: later}).MapAll(context.Background(), rowsOf(input))
		require.NoError(t, err)

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.NotEqual(t, first[0].Date, second[0].Date)
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, second[0].ID, toMap(t, second[0])["id"])
	})

	t.Run("publish gate", func(t *testing.T) {
		gated := m.NewMappingTable([]m.PathMapping{
			{Column: "ocid", Path: "/ocid", Publish: true},
			{Column: "title", Path: "/tender/title", Publish: false},
		})

		releases, err := mustMapper(t, gated, schema, nil, Options{}).MapAll(context.Background(), rowsOf(m.Row{"ocid": "OC1", "title": "x"}))
		require.NoError(t, err)
		assert.NotContains(t, toMap(t, releases[0]), "tender")

		releases, err = mustMapper(t, gated, schema, nil, Options{ForcePublish: true}).MapAll(context.Background(), rowsOf(m.Row{"ocid": "OC1", "title": "x"}))
		require.NoError(t, err)
		assert.Contains(t, toMap(t, releases[0]), "tender")
	})
}

func TestMapperStreaming(t *testing.T) {
	schema := schemaOf(node("/tender/title", "string"))
	table := published("title", "/tender/title")

	t.Run("emits as soon as the key changes", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})

		var seen []string

		rows := func(yield func(m.Row, error) bool) {
			if !yield(m.Row{"ocid": "OC1", "title": "a"}, nil) {
				return
			}

			assert.Empty(t, seen)

			if !yield(m.Row{"ocid": "OC2", "title": "b"}, nil) {
				return
			}

			assert.Equal(t, []string{"OC1"}, seen)
		}

		err := mp.Map(context.Background(), rows, func(rel m.Release) error {
			seen = append(seen, rel.OCID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"OC1", "OC2"}, seen)
	})

	t.Run("cancellation discards the draft", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})
		ctx, cancel := context.WithCancel(context.Background())

		rows := func(yield func(m.Row, error) bool) {
			if !yield(m.Row{"ocid": "OC1", "title": "a"}, nil) {
				return
			}

			cancel()
			yield(m.Row{"ocid": "OC1", "title": "b"}, nil)
		}

		emitted := 0
		err := mp.Map(ctx, rows, func(m.Release) error {
			emitted++
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, emitted)
	})

	t.Run("row errors stop the run", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})
		boom := errors.New("boom")

		var rows iter.Seq2[m.Row, error] = func(yield func(m.Row, error) bool) {
			yield(nil, boom)
		}

		_, err := mp.MapAll(context.Background(), rows)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("emit errors stop the run", func(t *testing.T) {
		mp := mustMapper(t, table, schema, nil, Options{})
		boom := errors.New("sink")

		err := mp.Map(context.Background(), rowsOf(m.Row{"ocid": "OC1", "title": "a"}), func(m.Release) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestShard(t *testing.T) {
	assert.True(t, Shard{}.Owns("anything"))
	assert.True(t, Shard{Index: 0, Total: 1}.Owns("anything"))

	keys := []string{"OC1", "OC2", "OC3", "OC4", "OC5", "OC6", "OC7", "OC8"}
	shards := []Shard{{Index: 0, Total: 3}, {Index: 1, Total: 3}, {Index: 2, Total: 3}}

	for _, k := range keys {
		owners := 0

		for _, s := range shards {
			if s.Owns(k) {
				owners++
			}
		}

		assert.Equal(t, 1, owners, k)
		assert.Equal(t, shards[0].Owns(k), shards[0].Owns(k))
	}
}

func TestShardNonContiguousKeys(t *testing.T) {
	schema := schemaOf(node("/tender/title", "string"))
	table := published("title", "/tender/title")
	shard := Shard{Index: 0, Total: 2}

	var own, foreign string

	for i := 0; own == "" || foreign == ""; i++ {
		key := fmt.Sprintf("OC%d", i)
		if shard.Owns(key) {
			own = cmp.Or(own, key)
		} else {
			foreign = cmp.Or(foreign, key)
		}
	}

	input := []m.Row{
		{"ocid": own, "title": "a"},
		{"ocid": foreign, "title": "b"},
		{"ocid": own, "title": "c"},
	}

	t.Run("foreign key splits the owned run", func(t *testing.T) {
		releases, err := mustMapper(t, table, schema, nil, Options{Shard: shard}).MapAll(context.Background(), rowsOf(input...))
		require.NoError(t, err)
		require.Len(t, releases, 2)
		assert.Equal(t, own, releases[0].OCID)
		assert.Equal(t, own, releases[1].OCID)
	})

	t.Run("shards add up to the unsharded run", func(t *testing.T) {
		whole, err := mustMapper(t, table, schema, nil, Options{}).MapAll(context.Background(), rowsOf(input...))
		require.NoError(t, err)

		total := 0

		for i := range shard.Total {
			part, err := mustMapper(t, table, schema, nil, Options{Shard: Shard{Index: i, Total: shard.Total}}).
				MapAll(context.Background(), rowsOf(input...))
			require.NoError(t, err)

			total += len(part)
		}

		assert.Len(t, whole, 3)
		assert.Equal(t, len(whole), total)
	})
}
