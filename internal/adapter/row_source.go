// Package adapter contains the I/O boundaries of ocdsmap: row sources, template
// and codelist stores, the release store and metrics sinks.
package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	"github.com/viant/afs"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Supported datasource drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverCSV      = "csv"
	DriverJSON     = "json"
)

// RowSource streams flat rows out of a datasource. Column names are normalized.
type RowSource interface {
	// Rows runs selector and yields its rows lazily. Errors are yielded in-band.
	Rows(ctx context.Context, selector string) iter.Seq2[m.Row, error]
	// Columns returns the column names selector produces, in source order.
	Columns(ctx context.Context, selector string) ([]string, error)
	Close() error
}

// NewRowSource opens a datasource. An empty driver is inferred from the connection
// string: a URL scheme for SQL databases or a file extension for flat files.
func NewRowSource(driver, connection string) (RowSource, error) {
	driver, dsn := resolveDriver(driver, connection)

	switch driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, &m.ConfigError{Component: "datasource", Message: "open " + driver, Err: err}
		}

		slog.Debug("Opened SQL datasource", "driver", driver)

		return &sqlSource{db: db, fs: afs.New()}, nil
	case DriverCSV:
		return &csvSource{location: dsn, fs: afs.New()}, nil
	case DriverJSON:
		return &jsonSource{location: dsn, fs: afs.New()}, nil
	default:
		return nil, &m.ConfigError{Component: "datasource", Message: fmt.Sprintf("unsupported driver %q", driver)}
	}
}

// SourceOpener opens row sources on demand.
type SourceOpener interface {
	OpenSource(driver, connection string) (RowSource, error)
}

type sourceOpener struct{}

// NewSourceOpener returns an opener backed by NewRowSource.
func NewSourceOpener() SourceOpener {
	return sourceOpener{}
}

func (sourceOpener) OpenSource(driver, connection string) (RowSource, error) {
	return NewRowSource(driver, connection)
}

func resolveDriver(driver, connection string) (string, string) {
	driver = strings.ToLower(strings.TrimSpace(driver))

	switch driver {
	case "sqlite3":
		driver = DriverSQLite
	case "postgresql":
		driver = DriverPostgres
	}

	switch {
	case strings.HasPrefix(connection, "sqlite:///"):
		return orDefault(driver, DriverSQLite), strings.TrimPrefix(connection, "sqlite:///")
	case strings.HasPrefix(connection, "postgres://"), strings.HasPrefix(connection, "postgresql://"):
		return orDefault(driver, DriverPostgres), connection
	}

	if driver != "" {
		return driver, connection
	}

	switch strings.ToLower(path.Ext(connection)) {
	case ".csv":
		return DriverCSV, connection
	case ".json", ".ndjson", ".jsonl":
		return DriverJSON, connection
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite, connection
	default:
		return "", connection
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

type sqlSource struct {
	db *sql.DB
	fs afs.Service
}

// query resolves selector into SQL text. Selectors ending in .sql are read from storage.
func (s *sqlSource) query(ctx context.Context, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", &m.ConfigError{Component: "datasource", Message: "empty selector"}
	}

	if !strings.HasSuffix(strings.ToLower(selector), ".sql") {
		return selector, nil
	}

	content, err := s.fs.DownloadWithURL(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("read selector %s: %w", selector, err)
	}

	return string(content), nil
}

func (s *sqlSource) Rows(ctx context.Context, selector string) iter.Seq2[m.Row, error] {
	return func(yield func(m.Row, error) bool) {
		q, err := s.query(ctx, selector)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.db.QueryContext(ctx, q)
		if err != nil {
			yield(nil, fmt.Errorf("run selector: %w", err))
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			yield(nil, fmt.Errorf("columns: %w", err))
			return
		}

		names := normalizeAll(cols)

		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))

			for i := range values {
				ptrs[i] = &values[i]
			}

			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, fmt.Errorf("scan row: %w", err))
				return
			}

			row := make(m.Row, len(cols))
			for i, name := range names {
				row[name] = values[i]
			}

			if !yield(row, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate rows: %w", err))
		}
	}
}

func (s *sqlSource) Columns(ctx context.Context, selector string) ([]string, error) {
	q, err := s.query(ctx, selector)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("run selector: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	return cols, nil
}

func (s *sqlSource) Close() error {
	return s.db.Close()
}

type csvSource struct {
	location string
	fs       afs.Service
}

func (s *csvSource) open(ctx context.Context) (io.ReadCloser, *csv.Reader, []string, error) {
	rc, err := s.fs.OpenURL(ctx, s.location)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s: %w", s.location, err)
	}

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		rc.Close()
		return nil, nil, nil, fmt.Errorf("read header of %s: %w", s.location, err)
	}

	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return rc, r, header, nil
}

func (s *csvSource) Rows(ctx context.Context, _ string) iter.Seq2[m.Row, error] {
	return func(yield func(m.Row, error) bool) {
		rc, r, header, err := s.open(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rc.Close()

		names := normalizeAll(header)

		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, fmt.Errorf("read %s: %w", s.location, err))
				return
			}

			row := make(m.Row, len(names))
			for i, name := range names {
				if i < len(record) {
					row[name] = record[i]
				}
			}

			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *csvSource) Columns(ctx context.Context, _ string) ([]string, error) {
	rc, _, header, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return header, nil
}

func (s *csvSource) Close() error { return nil }

// jsonSource reads either a JSON array of objects or newline-delimited objects.
type jsonSource struct {
	location string
	fs       afs.Service
}

func (s *jsonSource) Rows(ctx context.Context, _ string) iter.Seq2[m.Row, error] {
	return func(yield func(m.Row, error) bool) {
		rc, err := s.fs.OpenURL(ctx, s.location)
		if err != nil {
			yield(nil, fmt.Errorf("open %s: %w", s.location, err))
			return
		}
		defer rc.Close()

		for obj, err := range decodeObjects(rc) {
			if err != nil {
				yield(nil, fmt.Errorf("decode %s: %w", s.location, err))
				return
			}

			row := make(m.Row, len(obj))
			for k, v := range obj {
				row[m.NormalizeColumn(k)] = v
			}

			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *jsonSource) Columns(ctx context.Context, selector string) ([]string, error) {
	seen := map[string]bool{}

	var cols []string

	for row, err := range s.Rows(ctx, selector) {
		if err != nil {
			return nil, err
		}

		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	return cols, nil
}

func (s *jsonSource) Close() error { return nil }

func decodeObjects(r io.Reader) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		dec := json.NewDecoder(r)
		dec.UseNumber()

		array := false

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}

		if err != nil {
			yield(nil, err)
			return
		}

		switch tok {
		case json.Delim('['):
			array = true
		case json.Delim('{'):
			obj, err := decodeObjectBody(dec)
			if !yield(obj, err) || err != nil {
				return
			}
		default:
			yield(nil, fmt.Errorf("unexpected token %v", tok))
			return
		}

		for {
			if array && !dec.More() {
				return
			}

			var obj map[string]any

			err := dec.Decode(&obj)
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(obj, err) || err != nil {
				return
			}
		}
	}
}

// decodeObjectBody decodes the rest of an object whose opening brace was consumed.
func decodeObjectBody(dec *json.Decoder) (map[string]any, error) {
	obj := map[string]any{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}

		obj[key] = v
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

func normalizeAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = m.NormalizeColumn(c)
	}

	return out
}
