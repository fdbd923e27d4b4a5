package domain

import (
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Tracker remembers, per array path, the identifier of the element currently being
// filled. It lives exactly as long as one release draft.
type Tracker interface {
	// ShouldStartNewElement reports whether writing value at leafPath must open a new
	// element in arrayPath. Only the array's own identifier can do that, and only
	// when a different identifier was recorded before.
	ShouldStartNewElement(arrayPath, leafPath string, value m.Value) bool
	// Record stores value as the identifier of arrayPath's active element.
	Record(arrayPath string, value m.Value)
	// Current returns the recorded identifier of arrayPath.
	Current(arrayPath string) (string, bool)
	// ResetBelow forgets every array nested strictly inside arrayPath.
	ResetBelow(arrayPath string)
}

type tracker struct {
	last map[string]string
}

// NewTracker returns an empty tracker.
func NewTracker() Tracker {
	return &tracker{last: make(map[string]string)}
}

// IdentifierPath returns the identifier sub-path of arrayPath.
func IdentifierPath(arrayPath string) string {
	return arrayPath + m.PathSeparator + m.IdentifierField
}

func (t *tracker) ShouldStartNewElement(arrayPath, leafPath string, value m.Value) bool {
	if leafPath != IdentifierPath(arrayPath) {
		return false
	}

	prev, ok := t.last[arrayPath]
	if !ok {
		return false
	}

	return prev != identifierString(value)
}

func (t *tracker) Record(arrayPath string, value m.Value) {
	t.last[arrayPath] = identifierString(value)
}

func (t *tracker) Current(arrayPath string) (string, bool) {
	v, ok := t.last[arrayPath]
	return v, ok
}

func (t *tracker) ResetBelow(arrayPath string) {
	for p := range t.last {
		if m.IsBelow(p, arrayPath) {
			delete(t.last, p)
		}
	}
}

func identifierString(v m.Value) string {
	if s, ok := v.(m.Scalar); ok {
		return s.String()
	}

	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(b)
}
