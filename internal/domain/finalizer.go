package domain

import (
	"time"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// InitiationTender is the only initiation type OCDS defines.
const InitiationTender = "tender"

var releaseHead = []string{"ocid", "id", "date", "tag", "initiationType"}

// Finalizer turns a draft into a frozen release.
type Finalizer struct {
	schema *m.SchemaIndex
	prefix string
	now    func() time.Time
}

// NewFinalizer returns a finalizer. now supplies the release date when the draft
// observed no business date; nil means time.Now.
func NewFinalizer(schema *m.SchemaIndex, ocidPrefix string, now func() time.Time) *Finalizer {
	if now == nil {
		now = time.Now
	}

	return &Finalizer{schema: schema, prefix: ocidPrefix, now: now}
}

// Finalize prunes the draft document, stamps derived fields and computes the id
// over everything but the date.
// The draft must not be used afterwards.
func (f *Finalizer) Finalize(d *Draft) (m.Release, error) {
	doc := d.Document
	f.prune(doc, "")

	rel := m.Release{Document: doc}

	if doc.Has("tender") && !doc.Has("initiationType") {
		doc.Set("initiationType", m.Scalar{V: InitiationTender})
	}

	if it, ok := doc.Get("initiationType"); ok {
		if s, ok := it.(m.Scalar); ok {
			rel.InitiationType = s.String()
		}
	}

	date, ok := d.LatestDate()
	if !ok {
		date = f.now().UTC()
	}

	rel.Date = date.Truncate(time.Second)

	rel.OCID = f.OCID(d.Key)
	doc.Set("ocid", m.Scalar{V: rel.OCID})

	rel.Tag = Tags(doc)

	tags := &m.Array{}
	for _, t := range rel.Tag {
		tags.Append(m.Scalar{V: t})
	}

	doc.Set("tag", tags)

	doc.Delete("id")
	doc.Delete("date")

	// The clock may supply the date, so it stays out of the hash.
	id, err := ContentHash(doc)
	if err != nil {
		return m.Release{}, err
	}

	rel.ID = id
	doc.Set("id", m.Scalar{V: id})
	doc.Set("date", m.Scalar{V: rel.Date.Format(time.RFC3339)})
	doc.Reorder(releaseHead...)

	return rel, nil
}

// OCID joins the configured prefix and the raw business key.
func (f *Finalizer) OCID(key string) string {
	if f.prefix == "" {
		return key
	}

	return f.prefix + "-" + key
}

// prune removes empty values bottom-up and drops array elements lacking an id
// where the schema declares one.
func (f *Finalizer) prune(obj *m.Object, path string) {
	for _, key := range obj.Keys() {
		child := path + m.PathSeparator + key

		v, _ := obj.Get(key)

		switch t := v.(type) {
		case *m.Object:
			f.prune(t, child)
		case *m.Array:
			f.pruneArray(t, child)
		}

		if m.IsEmpty(v) {
			obj.Delete(key)
		}
	}
}

func (f *Finalizer) pruneArray(arr *m.Array, path string) {
	needID := f.schema.HasIdentifier(path)
	kept := arr.Items[:0]

	for _, item := range arr.Items {
		switch t := item.(type) {
		case *m.Object:
			f.prune(t, path)

			if needID && !t.Has(m.IdentifierField) {
				continue
			}
		case *m.Array:
			f.pruneArray(t, path)
		}

		if m.IsEmpty(item) {
			continue
		}

		kept = append(kept, item)
	}

	arr.Items = kept
}

// Tags derives the release tags from the sections present in doc.
func Tags(doc *m.Object) []string {
	var tags []string

	if doc.Has("planning") {
		tags = append(tags, m.TagPlanning)
	}

	if doc.Has("tender") {
		tags = append(tags, m.TagTender)

		if amendments, ok := m.Lookup(doc, "/tender/amendments"); ok && !m.IsEmpty(amendments) {
			tags = append(tags, m.TagTenderAmendment)
		}
	}

	if doc.Has("awards") {
		tags = append(tags, m.TagAward)
	}

	if contracts, ok := doc.Get("contracts"); ok {
		tags = append(tags, m.TagContract)

		if anyContract(contracts, func(c *m.Object) bool { return hasItems(c, "amendments") }) {
			tags = append(tags, m.TagContractAmendment)
		}

		if anyContract(contracts, func(c *m.Object) bool { return hasItems(c, "implementation") }) {
			tags = append(tags, m.TagImplementation)
		}
	}

	return tags
}

func hasItems(obj *m.Object, key string) bool {
	v, ok := obj.Get(key)
	return ok && !m.IsEmpty(v)
}

func anyContract(v m.Value, pred func(*m.Object) bool) bool {
	arr, ok := v.(*m.Array)
	if !ok {
		return false
	}

	for _, item := range arr.Items {
		if c, ok := item.(*m.Object); ok && pred(c) {
			return true
		}
	}

	return false
}
