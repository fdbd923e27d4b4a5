package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// CodelistStore loads codelist substitution tables.
type CodelistStore interface {
	LoadCodelists(ctx context.Context, locations ...string) (m.Codelists, error)
}

type codelistStore struct {
	fs afs.Service
}

// NewCodelistStore returns a store reading YAML or XLSX codelists through afs.
func NewCodelistStore() CodelistStore {
	return &codelistStore{fs: afs.New()}
}

// LoadCodelists merges every location into one table. Later locations override
// earlier ones. No locations yields an empty table.
func (s *codelistStore) LoadCodelists(ctx context.Context, locations ...string) (m.Codelists, error) {
	lists := m.Codelists{}

	for _, location := range locations {
		if location == "" {
			continue
		}

		content, err := s.fs.DownloadWithURL(ctx, location)
		if err != nil {
			return nil, &m.ConfigError{Component: "codelists", Message: "read " + location, Err: err}
		}

		var loaded m.Codelists

		switch strings.ToLower(path.Ext(location)) {
		case ".yaml", ".yml":
			loaded, err = readYAMLCodelists(content)
		case ".xlsx":
			loaded, err = readWorkbookCodelists(content)
		default:
			err = fmt.Errorf("unsupported codelist format %q", path.Ext(location))
		}

		if err != nil {
			return nil, &m.ConfigError{Component: "codelists", Message: "parse " + location, Err: err}
		}

		slog.Debug("Loaded codelists", "location", location, "count", len(loaded))
		lists.Merge(loaded)
	}

	return lists, nil
}

// readYAMLCodelists reads "codelist: {source value: code}" documents.
func readYAMLCodelists(content []byte) (m.Codelists, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	lists := m.Codelists{}

	for name, table := range raw {
		for source, code := range table {
			lists.Add(name, source, code)
		}
	}

	return lists, nil
}

// readWorkbookCodelists reads every "(OCDS)" sheet. A codelist_name row opens a
// codelist, a codelist_headers row locates the Code, Source codelist and Source code
// columns, and the rows that follow map source codes onto OCDS codes.
func readWorkbookCodelists(content []byte) (m.Codelists, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	lists := m.Codelists{}

	for _, sheet := range wb.GetSheetList() {
		if !strings.HasPrefix(strings.ToLower(sheet), "(ocds)") {
			continue
		}

		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		readCodelistRows(rows, lists)
	}

	return lists, nil
}

func readCodelistRows(rows [][]string, lists m.Codelists) {
	var (
		name                            string
		codeCol, sourceListCol, srcCol = -1, -1, -1
	)

	for _, row := range rows {
		switch cell(row, 0) {
		case "codelist_name":
			parts := strings.Split(cell(row, 1), ":")
			name = strings.TrimSpace(parts[len(parts)-1])
			codeCol, sourceListCol, srcCol = -1, -1, -1
		case "codelist_headers":
			for i, h := range row {
				switch strings.TrimSpace(h) {
				case "Code":
					codeCol = i
				case "Source codelist":
					sourceListCol = i
				case "Source code":
					srcCol = i
				}
			}
		default:
			if name == "" || codeCol < 0 || sourceListCol < 0 || srcCol < 0 {
				continue
			}

			source := cell(row, srcCol)
			if cell(row, sourceListCol) == "" || source == "" {
				continue
			}

			lists.Add(name, source, cell(row, codeCol))
		}
	}
}
