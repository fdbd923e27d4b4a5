package domain

import (
	"log/slog"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Outcome is the result of assembling one value.
type Outcome int

const (
	// OutcomeWritten means the value was placed in the document.
	OutcomeWritten Outcome = iota
	// OutcomeEmpty means the value was empty and skipped.
	OutcomeEmpty
	// OutcomeDropped means a codelist had no entry for the value.
	OutcomeDropped
)

// DefaultSlotArrays are arrays whose members arrive without a shared identifier.
var DefaultSlotArrays = []string{"/tender/selectionCriteria/criteria"}

// DefaultCodelistFallback are paths that keep their raw value on a codelist miss.
var DefaultCodelistFallback = []string{
	"/tender/items/classification/scheme",
	"/awards/items/classification/scheme",
	"/contracts/items/classification/scheme",
}

// Assembler writes (path, value) pairs into a draft document.
type Assembler struct {
	schema    *m.SchemaIndex
	codelists m.Codelists
	fallback  map[string]bool
	slots     map[string]bool
}

// NewAssembler returns an assembler. fallback lists paths that keep raw values on a
// codelist miss; slots lists arrays filled by first free slot.
func NewAssembler(schema *m.SchemaIndex, codelists m.Codelists, fallback, slots []string) *Assembler {
	a := &Assembler{
		schema:    schema,
		codelists: codelists,
		fallback:  make(map[string]bool, len(fallback)),
		slots:     make(map[string]bool, len(slots)),
	}

	for _, p := range fallback {
		a.fallback[p] = true
	}

	for _, p := range slots {
		a.slots[p] = true
	}

	return a
}

// Assemble writes raw at path inside d.
func (a *Assembler) Assemble(d *Draft, path string, raw any) Outcome {
	v, ok := m.FromRaw(raw)
	if !ok {
		return OutcomeEmpty
	}

	v, ok = a.substitute(path, v)
	if !ok {
		slog.Debug("codelist miss", "path", path, "value", raw)
		return OutcomeDropped
	}

	if a.schema.IsDateTime(path) {
		d.ObserveDate(v)
	}

	segments := m.SplitPath(path)
	if len(segments) == 0 {
		return OutcomeEmpty
	}

	// Only the innermost array holding the leaf can see a boundary; outer
	// arrays stay on their current element.
	owner, _ := a.schema.ContainingArray(path)
	cur := d.Document

	for i, seg := range segments[:len(segments)-1] {
		prefix := m.JoinPath(segments[:i+1]...)

		if a.schema.KindOf(prefix) == m.KindArray {
			cur = a.element(d, cur.EnsureArray(seg), prefix, path, v, prefix == owner)
			continue
		}

		cur = cur.EnsureObject(seg)
	}

	a.writeLeaf(cur, segments[len(segments)-1], path, v)

	return OutcomeWritten
}

func (a *Assembler) substitute(path string, v m.Value) (m.Value, bool) {
	node, ok := a.schema.Lookup(path)
	if !ok || node.Codelist == "" || a.codelists == nil {
		return v, true
	}

	s, ok := v.(m.Scalar)
	if !ok {
		return v, true
	}

	code, known, found := a.codelists.Lookup(node.Codelist, s.String())

	switch {
	case !known:
		return v, true
	case found:
		return m.Scalar{V: code}, true
	case a.fallback[path]:
		return v, true
	default:
		return nil, false
	}
}

// element returns the object of arr that the value at leafPath belongs to,
// appending a new element when needed. owner marks the innermost array above
// leafPath, the only one whose tracker is consulted.
func (a *Assembler) element(d *Draft, arr *m.Array, arrayPath, leafPath string, v m.Value, owner bool) *m.Object {
	if a.slots[arrayPath] {
		return a.slot(arr, arrayPath, leafPath)
	}

	isID := owner && leafPath == IdentifierPath(arrayPath)

	if last, ok := arr.Last().(*m.Object); ok {
		if owner && d.Tracker.ShouldStartNewElement(arrayPath, leafPath, v) {
			return a.appendElement(d, arr, arrayPath, v)
		}

		if isID {
			if _, recorded := d.Tracker.Current(arrayPath); !recorded {
				d.Tracker.Record(arrayPath, v)
			}
		}

		return last
	}

	elem := m.NewObject()
	arr.Append(elem)

	if isID {
		d.Tracker.Record(arrayPath, v)
	}

	return elem
}

func (a *Assembler) appendElement(d *Draft, arr *m.Array, arrayPath string, id m.Value) *m.Object {
	elem := m.NewObject()
	arr.Append(elem)

	d.Tracker.ResetBelow(arrayPath)
	d.Tracker.Record(arrayPath, id)

	return elem
}

// slot places a member field in the first element that does not have it yet.
// Fields nested deeper than a direct member go to the last element.
func (a *Assembler) slot(arr *m.Array, arrayPath, leafPath string) *m.Object {
	rel := m.SplitPath(leafPath)[m.Depth(arrayPath):]

	if len(rel) == 1 {
		for _, item := range arr.Items {
			if obj, ok := item.(*m.Object); ok && !obj.Has(rel[0]) {
				return obj
			}
		}
	} else if last, ok := arr.Last().(*m.Object); ok {
		return last
	}

	elem := m.NewObject()
	arr.Append(elem)

	return elem
}

func (a *Assembler) writeLeaf(parent *m.Object, key, path string, v m.Value) {
	if a.schema.IsArray(path) {
		arr := parent.EnsureArray(key)

		items := []m.Value{v}
		if in, ok := v.(*m.Array); ok {
			items = in.Items
		}

		for _, item := range items {
			s, ok := item.(m.Scalar)
			if ok && arr.Contains(s) {
				continue
			}

			arr.Append(item)
		}

		return
	}

	if existing, ok := parent.Get(key); ok {
		if eo, ok := existing.(*m.Object); ok {
			if in, ok := v.(*m.Object); ok {
				eo.Merge(in)
				return
			}
		}
	}

	parent.Set(key, v)
}
