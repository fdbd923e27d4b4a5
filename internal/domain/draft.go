package domain

import (
	"time"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Draft is the in-progress release of one business key.
type Draft struct {
	Key      string
	Document *m.Object
	Tracker  Tracker

	latest  time.Time
	hasDate bool
}

// NewDraft opens an empty draft for key.
func NewDraft(key string) *Draft {
	return &Draft{
		Key:      key,
		Document: m.NewObject(),
		Tracker:  NewTracker(),
	}
}

// ObserveDate keeps the latest parseable business date-time seen so far.
func (d *Draft) ObserveDate(v m.Value) {
	s, ok := v.(m.Scalar)
	if !ok {
		return
	}

	ts, ok := parseDateTime(s.String())
	if !ok {
		return
	}

	if !d.hasDate || ts.After(d.latest) {
		d.latest = ts
		d.hasDate = true
	}
}

// LatestDate returns the latest observed business date-time.
func (d *Draft) LatestDate() (time.Time, bool) {
	return d.latest, d.hasDate
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}

	return time.Time{}, false
}
