package adapter

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func collect(t *testing.T, src RowSource, selector string) []m.Row {
	t.Helper()

	var rows []m.Row

	for row, err := range src.Rows(context.Background(), selector) {
		require.NoError(t, err)
		rows = append(rows, row)
	}

	return rows
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		driver, connection string
		wantDriver, wantDSN string
	}{
		{"", "sqlite:///data/ocds.db", DriverSQLite, "data/ocds.db"},
		{"", "postgres://u:p@host/db", DriverPostgres, "postgres://u:p@host/db"},
		{"pgx", "postgres://u:p@host/db", DriverPgx, "postgres://u:p@host/db"},
		{"sqlite3", "file.db", DriverSQLite, "file.db"},
		{"postgresql", "host=x", DriverPostgres, "host=x"},
		{"", "rows.CSV", DriverCSV, "rows.CSV"},
		{"", "rows.ndjson", DriverJSON, "rows.ndjson"},
		{"", "local.sqlite", DriverSQLite, "local.sqlite"},
		{"", "unknown", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+"|"+tt.connection, func(t *testing.T) {
			driver, dsn := resolveDriver(tt.driver, tt.connection)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestNewRowSourceUnknownDriver(t *testing.T) {
	_, err := NewRowSource("oracle", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, m.ErrConfig))
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writeTestFile(t, path, "\ufeffOCID,Tender  Title,Item ID\nOC1,Roads,I1\nOC1,Roads,I2\nOC2,Bridges\n")

	src, err := NewRowSource("", path)
	require.NoError(t, err)
	defer src.Close()

	rows := collect(t, src, "")
	require.Len(t, rows, 3)
	assert.Equal(t, m.Row{"ocid": "OC1", "tender title": "Roads", "item id": "I2"}, rows[1])
	assert.Equal(t, m.Row{"ocid": "OC2", "tender title": "Bridges"}, rows[2])

	cols, err := src.Columns(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"OCID", "Tender  Title", "Item ID"}, cols)
}

func TestCSVSourceStopsEarly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writeTestFile(t, path, "ocid\nOC1\nOC2\nOC3\n")

	src, err := NewRowSource(DriverCSV, path)
	require.NoError(t, err)

	count := 0

	for _, err := range src.Rows(context.Background(), "") {
		require.NoError(t, err)

		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestJSONSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("array", func(t *testing.T) {
		path := filepath.Join(dir, "rows.json")
		writeTestFile(t, path, `[{"OCID":"OC1","Amount":12.5},{"OCID":"OC2","Value":{"currency":"USD"}}]`)

		src, err := NewRowSource("", path)
		require.NoError(t, err)

		rows := collect(t, src, "")
		require.Len(t, rows, 2)
		assert.Equal(t, "OC1", rows[0]["ocid"])
		assert.Equal(t, "12.5", rows[0]["amount"].(interface{ String() string }).String())
		assert.Equal(t, map[string]any{"currency": "USD"}, rows[1]["value"])
	})

	t.Run("newline delimited", func(t *testing.T) {
		path := filepath.Join(dir, "rows.ndjson")
		writeTestFile(t, path, "{\"ocid\":\"OC1\"}\n{\"ocid\":\"OC2\",\"x\":1}\n")

		src, err := NewRowSource("", path)
		require.NoError(t, err)

		rows := collect(t, src, "")
		require.Len(t, rows, 2)
		assert.Equal(t, "OC2", rows[1]["ocid"])

		cols, err := src.Columns(context.Background(), "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ocid", "x"}, cols)
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		writeTestFile(t, path, `"nope"`)

		src, err := NewRowSource("", path)
		require.NoError(t, err)

		var gotErr error
		for _, err := range src.Rows(context.Background(), "") {
			gotErr = err
		}

		assert.Error(t, gotErr)
	})
}

func TestSQLiteSource(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ocds.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE tenders (ocid TEXT, title TEXT, amount REAL, note TEXT)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO tenders VALUES ('OC1', 'Roads', 10.5, NULL), ('OC2', 'Bridges', 3, 'n')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := NewRowSource("", "sqlite:///"+dbPath)
	require.NoError(t, err)
	defer src.Close()

	selector := `SELECT ocid AS "OCID", title AS "Tender Title", amount, note FROM tenders ORDER BY ocid`

	rows := collect(t, src, selector)
	require.Len(t, rows, 2)
	assert.Equal(t, "OC1", rows[0]["ocid"])
	assert.Equal(t, "Roads", rows[0]["tender title"])
	assert.Nil(t, rows[0]["note"])
	assert.EqualValues(t, 10.5, rows[0]["amount"])

	cols, err := src.Columns(context.Background(), selector)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCID", "Tender Title", "amount", "note"}, cols)

	t.Run("selector file", func(t *testing.T) {
		sqlPath := filepath.Join(dir, "select.sql")
		writeTestFile(t, sqlPath, "SELECT ocid FROM tenders WHERE ocid = 'OC2'")

		rows := collect(t, src, sqlPath)
		require.Len(t, rows, 1)
		assert.Equal(t, "OC2", rows[0]["ocid"])
	})

	t.Run("bad selector", func(t *testing.T) {
		var gotErr error
		for _, err := range src.Rows(context.Background(), "SELECT * FROM missing") {
			gotErr = err
		}

		assert.Error(t, gotErr)

		_, err := src.Columns(context.Background(), "")
		assert.True(t, errors.Is(err, m.ErrConfig))
	})
}
