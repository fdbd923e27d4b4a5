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

// Sheets of the XLSX mapping template.
var mappingSheets = []string{
	"(OCDS) 1. General (all stages)",
	"(OCDS) 2. Planning",
	"(OCDS) 3. Tender",
	"(OCDS) 4. Award",
	"(OCDS) 5. Contract",
	"(OCDS) 6. Implementation",
}

const (
	dataElementsSheet = "2. Data Elements"
	schemaSheetMarker = "Schema"
	ocdsSheetMarker   = "OCDS"
)

// Section order of the mapping table.
var sectionOrder = []string{"planning", "tender", "awards", "contracts", "implementation"}

// TemplateStore loads mapping templates.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, location string) (*m.Template, error)
}

type templateStore struct {
	fs afs.Service
}

// NewTemplateStore returns a store reading YAML or XLSX templates through afs.
func NewTemplateStore() TemplateStore {
	return &templateStore{fs: afs.New()}
}

// yamlTemplate is the on-disk shape of a YAML mapping template.
type yamlTemplate struct {
	Mappings []m.PathMapping `yaml:"mappings"`
	Schema   []m.SchemaNode  `yaml:"schema"`
}

func (s *templateStore) LoadTemplate(ctx context.Context, location string) (*m.Template, error) {
	if location == "" {
		return nil, &m.ConfigError{Component: "template", Message: "no mapping file configured"}
	}

	content, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, &m.ConfigError{Component: "template", Message: "read " + location, Err: err}
	}

	var (
		mappings []m.PathMapping
		nodes    []m.SchemaNode
	)

	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml":
		var tpl yamlTemplate
		if err := yaml.Unmarshal(content, &tpl); err != nil {
			return nil, &m.ConfigError{Component: "template", Message: "parse " + location, Err: err}
		}

		mappings, nodes = tpl.Mappings, tpl.Schema
	case ".xlsx":
		mappings, nodes, err = readWorkbookTemplate(content)
		if err != nil {
			return nil, &m.ConfigError{Component: "template", Message: "parse " + location, Err: err}
		}
	default:
		return nil, &m.ConfigError{Component: "template", Message: fmt.Sprintf("unsupported template format %q", location)}
	}

	for i := range mappings {
		if !strings.HasPrefix(mappings[i].Path, m.PathSeparator) {
			mappings[i].Path = m.PathSeparator + mappings[i].Path
		}
	}

	slog.Debug("Loaded mapping template", "location", location, "mappings", len(mappings), "schema", len(nodes))

	return &m.Template{
		Mappings: m.NewMappingTable(orderSections(mappings)),
		Schema:   m.NewSchemaIndex(nodes),
	}, nil
}

// orderSections stably groups mappings as general, planning, tender, awards,
// contracts, implementation.
func orderSections(mappings []m.PathMapping) []m.PathMapping {
	buckets := make(map[string][]m.PathMapping, len(sectionOrder)+1)

	for _, pm := range mappings {
		section := m.Section(pm.Path)
		if !isSection(section) {
			section = ""
		}

		buckets[section] = append(buckets[section], pm)
	}

	out := append([]m.PathMapping(nil), buckets[""]...)
	for _, section := range sectionOrder {
		out = append(out, buckets[section]...)
	}

	return out
}

func isSection(s string) bool {
	for _, section := range sectionOrder {
		if s == section {
			return true
		}
	}

	return false
}

func readWorkbookTemplate(content []byte) ([]m.PathMapping, []m.SchemaNode, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	publish, err := readDataElements(wb)
	if err != nil {
		return nil, nil, err
	}

	var mappings []m.PathMapping

	for _, sheet := range mappingSheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		mappings = append(mappings, readMappingRows(rows, publish)...)
	}

	var nodes []m.SchemaNode

	for _, sheet := range wb.GetSheetList() {
		if !strings.Contains(sheet, ocdsSheetMarker) || !strings.Contains(sheet, schemaSheetMarker) {
			continue
		}

		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		nodes = append(nodes, readSchemaRows(rows)...)
	}

	return mappings, nodes, nil
}

// readDataElements returns the publish flag of every data element.
func readDataElements(wb *excelize.File) (map[string]bool, error) {
	rows, err := wb.GetRows(dataElementsSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", dataElementsSheet, err)
	}

	publish := make(map[string]bool)

	for i, row := range rows {
		if i < 3 {
			continue
		}

		element := cell(row, 3)
		if element == "" {
			continue
		}

		publish[element] = strings.Contains(strings.ToLower(cell(row, 4)), "yes")
	}

	return publish, nil
}

// readMappingRows reads one "(OCDS) n." sheet. Span rows open a block; field rows
// with a mapping become path mappings.
func readMappingRows(rows [][]string, publish map[string]bool) []m.PathMapping {
	var (
		block    string
		mappings []m.PathMapping
	)

	for i, row := range rows {
		if i < 3 {
			continue
		}

		target := cell(row, 2)

		switch cell(row, 0) {
		case "span", "ref_span", "extension_span":
			block = target
		case "field", "required_field", "extension_field", "additional_field":
			column := cell(row, 5)
			if column == "" {
				continue
			}

			mappings = append(mappings, m.PathMapping{
				Column:  column,
				Path:    target,
				Block:   block,
				Publish: publish[dataElementOf(column)],
			})
		}
	}

	return mappings
}

// dataElementOf extracts "element" from a mapping label such as "Tender title (element)".
func dataElementOf(label string) string {
	open := strings.LastIndex(label, "(")
	if open < 0 {
		return strings.TrimSpace(label)
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label[open+1:]), ")"))
}

// readSchemaRows reads an "OCDS Schema" sheet: path, type, values and codelist columns.
func readSchemaRows(rows [][]string) []m.SchemaNode {
	seen := make(map[string]bool)

	var nodes []m.SchemaNode

	for i, row := range rows {
		if i < 1 {
			continue
		}

		p := cell(row, 1)
		if p == "" {
			continue
		}

		p = m.PathSeparator + strings.TrimPrefix(p, m.PathSeparator)
		typ := strings.ToLower(cell(row, 4))

		// an object row repeating an array path describes the array's items
		if seen[p] && typ == "object" {
			continue
		}

		if strings.Contains(typ, "array") {
			typ = "array"
		}

		node := m.SchemaNode{Path: p, Type: typ, Codelist: cell(row, 8)}
		if cell(row, 6) == m.FormatDateTime {
			node.Format = m.FormatDateTime
		}

		seen[p] = true
		nodes = append(nodes, node)
	}

	return nodes
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}
