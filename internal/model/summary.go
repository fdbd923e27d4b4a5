package model

import "time"

// RunSummary describes a finished mapping run.
type RunSummary struct {
	RunID         string
	RowsRead      int
	RowsSkipped   int
	ValuesDropped int
	Releases      int
	TagCounts     map[string]int
	OutputPath    string
	Duration      time.Duration
	ShardIndex    int
	ShardTotal    int
}

// ValidationReport compares the columns produced by a selector with the mapped columns.
type ValidationReport struct {
	SourceColumns []string
	MappedColumns []string
	// Unmapped are source columns no mapping refers to.
	Unmapped []string
	// Missing are mapped columns the source does not produce.
	Missing []string
}

// OK reports whether every mapped column is available.
func (r ValidationReport) OK() bool {
	return len(r.Missing) == 0
}
