package model

import "time"

// Row is one flat record from a data source, keyed by normalized column name.
type Row map[string]any

// Get returns the value of column, normalizing the name first.
func (r Row) Get(column string) (any, bool) {
	if v, ok := r[column]; ok {
		return v, true
	}

	v, ok := r[NormalizeColumn(column)]

	return v, ok
}

// Normalize returns r with every column name normalized. When two columns fold to
// the same name the non-empty value wins.
func (r Row) Normalize() Row {
	out := make(Row, len(r))

	for k, v := range r {
		nk := NormalizeColumn(k)
		if prev, ok := out[nk]; ok && !IsEmptyRaw(prev) {
			continue
		}

		out[nk] = v
	}

	return out
}

// Release tags, in emission precedence.
const (
	TagPlanning          = "planning"
	TagTender            = "tender"
	TagTenderAmendment   = "tenderAmendment"
	TagAward             = "award"
	TagContract          = "contract"
	TagContractAmendment = "contractAmendment"
	TagImplementation    = "implementation"
)

// Release is a finalized release. It is never mutated after emission.
type Release struct {
	OCID           string
	ID             string
	Date           time.Time
	Tag            []string
	InitiationType string
	Document       *Object
}

// MarshalJSON renders the release document.
func (r Release) MarshalJSON() ([]byte, error) {
	if r.Document == nil {
		return []byte("{}"), nil
	}

	return r.Document.MarshalJSON()
}

// Publisher identifies the organization publishing a release package.
type Publisher struct {
	Name   string `json:"name,omitempty"`
	Scheme string `json:"scheme,omitempty"`
	UID    string `json:"uid,omitempty"`
	URI    string `json:"uri,omitempty"`
}

// PackageMeta is the release package envelope written around the releases.
type PackageMeta struct {
	URI               string    `json:"uri,omitempty"`
	Version           string    `json:"version,omitempty"`
	PublishedDate     string    `json:"publishedDate,omitempty"`
	Publisher         Publisher `json:"publisher"`
	License           string    `json:"license,omitempty"`
	PublicationPolicy string    `json:"publicationPolicy,omitempty"`
	Extensions        []string  `json:"extensions,omitempty"`
}

// Template is a loaded mapping template.
type Template struct {
	Mappings *MappingTable
	Schema   *SchemaIndex
}
