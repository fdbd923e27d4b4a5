package controller

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// ProgressEvery is how many releases SimpleUI lets pass between progress lines.
const ProgressEvery = 1000

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command

	mu       sync.Mutex
	releases int
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.releases = 0
	s.mu.Unlock()

	s.printf("%s...\n", newStartConfig(options...).label)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo prints where the run reads from.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Run %s: mapping %s with %s (Shard %d/%d)\n",
		info.RunID, info.Source, info.Template, info.ShardIndex, max(info.ShardTotal, 1))
}

// DisplayRelease counts releases and prints a progress line every ProgressEvery.
func (s *SimpleUI) DisplayRelease(ctx context.Context, _ m.Release) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.mu.Lock()
	s.releases++
	count := s.releases
	s.mu.Unlock()

	if count%ProgressEvery == 0 {
		s.printf("Emitted %d releases\n", count)
	}
}

// DisplaySummary prints the run totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary))

	return nil
}

// DisplayValidation prints the column comparison and a diff of what does not line up.
func (s *SimpleUI) DisplayValidation(ctx context.Context, report m.ValidationReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderValidationTable(report))

	if diff := renderColumnDiff(report); diff != "" {
		s.printf("\n%s", diff)
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderSummaryTable(summary m.RunSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"Run", summary.RunID})
	table.Append([]string{"Rows read", fmt.Sprintf("%d", summary.RowsRead)})
	table.Append([]string{"Rows skipped", fmt.Sprintf("%d", summary.RowsSkipped)})
	table.Append([]string{"Values dropped", fmt.Sprintf("%d", summary.ValuesDropped)})

	tags := make([]string, 0, len(summary.TagCounts))
	for tag := range summary.TagCounts {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	for _, tag := range tags {
		table.Append([]string{"Tagged " + tag, fmt.Sprintf("%d", summary.TagCounts[tag])})
	}

	if summary.ShardTotal > 1 {
		table.Append([]string{"Shard", fmt.Sprintf("%d/%d", summary.ShardIndex, summary.ShardTotal)})
	}

	table.Append([]string{"Duration", summary.Duration.Round(time.Millisecond).String()})

	table.SetFooter([]string{
		"Releases",
		fmt.Sprintf("%d", summary.Releases),
	})

	table.Render()

	if summary.OutputPath != "" {
		fmt.Fprintf(&tableBuffer, "Output: %s\n", summary.OutputPath)
	}

	return tableBuffer.String()
}

func renderValidationTable(report m.ValidationReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Column", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, column := range report.MappedColumns {
		status := "ok"
		if slices.Contains(report.Missing, column) {
			status = "missing"
		}

		table.Append([]string{column, status})
	}

	for _, column := range report.Unmapped {
		table.Append([]string{column, "unmapped"})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Mapped %d", len(report.MappedColumns)),
		fmt.Sprintf("Missing %d", len(report.Missing)),
	})

	table.Render()

	return tableBuffer.String()
}

// renderColumnDiff diffs the mapped columns against the source columns, both
// sorted. It returns "" when they match.
func renderColumnDiff(report m.ValidationReport) string {
	if len(report.Missing) == 0 && len(report.Unmapped) == 0 {
		return ""
	}

	mapped := slices.Sorted(slices.Values(report.MappedColumns))
	source := make([]string, 0, len(report.SourceColumns))

	for _, column := range report.SourceColumns {
		source = append(source, m.NormalizeColumn(column))
	}

	slices.Sort(source)
	source = slices.Compact(source)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        linesOf(mapped),
		B:        linesOf(source),
		FromFile: "mapping",
		ToFile:   "source",
		Context:  0,
	})
	if err != nil {
		return ""
	}

	return diff
}

func linesOf(items []string) []string {
	if len(items) == 0 {
		return nil
	}

	return difflib.SplitLines(strings.Join(items, "\n"))
}
