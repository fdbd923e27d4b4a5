package domain

import "sync"

// Skip reasons reported to Metrics.RowSkipped.
const (
	SkipMissingKey = "missing_key"
	SkipOtherShard = "other_shard"
)

// Metrics receives engine counters.
type Metrics interface {
	RowRead()
	RowSkipped(reason string)
	ValueDropped(path string)
	ReleaseEmitted(tags []string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RowRead()                {}
func (NopMetrics) RowSkipped(string)       {}
func (NopMetrics) ValueDropped(string)     {}
func (NopMetrics) ReleaseEmitted([]string) {}

// Stats counts engine events and forwards them to another Metrics.
type Stats struct {
	mu        sync.Mutex
	next      Metrics
	rows      int
	skipped   int
	dropped   int
	releases  int
	tagCounts map[string]int
}

// NewStats wraps next. A nil next is replaced with NopMetrics.
func NewStats(next Metrics) *Stats {
	if next == nil {
		next = NopMetrics{}
	}

	return &Stats{next: next, tagCounts: make(map[string]int)}
}

func (s *Stats) RowRead() {
	s.mu.Lock()
	s.rows++
	s.mu.Unlock()
	s.next.RowRead()
}

func (s *Stats) RowSkipped(reason string) {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
	s.next.RowSkipped(reason)
}

func (s *Stats) ValueDropped(path string) {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
	s.next.ValueDropped(path)
}

func (s *Stats) ReleaseEmitted(tags []string) {
	s.mu.Lock()
	s.releases++

	for _, t := range tags {
		s.tagCounts[t]++
	}
	s.mu.Unlock()
	s.next.ReleaseEmitted(tags)
}

// Snapshot returns rows read, rows skipped, values dropped, releases emitted and tag counts.
func (s *Stats) Snapshot() (rows, skipped, dropped, releases int, tags map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags = make(map[string]int, len(s.tagCounts))
	for k, v := range s.tagCounts {
		tags[k] = v
	}

	return s.rows, s.skipped, s.dropped, s.releases, tags
}
