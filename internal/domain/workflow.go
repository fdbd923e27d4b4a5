package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ocdsmap.dev/pkg/ocdsmap/internal/adapter"
	"ocdsmap.dev/pkg/ocdsmap/internal/controller"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// DefaultBuffer is the number of finalized releases queued between the mapper
// and the release writer.
const DefaultBuffer = 64

// ErrMissingColumns is returned by Validate when mapped columns are absent from the source.
var ErrMissingColumns = errors.New("mapped columns missing from source")

// SourceArgs locates the rows to map.
type SourceArgs struct {
	Driver     string
	Connection string
	Selector   string
}

// RunArgs contains the arguments for a mapping run.
type RunArgs struct {
	Template  string
	Codelists []string
	Source    SourceArgs
	Output    adapter.OutputSpec
	Options   Options
	// Buffer bounds the release queue; zero means DefaultBuffer.
	Buffer      int
	MetricsFile string
}

// ValidateArgs contains the arguments for checking a template against a source.
type ValidateArgs struct {
	Template string
	Source   SourceArgs
}

// RunMetrics is a Metrics sink that also records run outcomes.
type RunMetrics interface {
	Metrics
	Finish(d time.Duration, err error)
	WriteTextfile(path string) error
}

// Workflow defines the mapping use cases.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	Validate(ctx context.Context, args ValidateArgs) error
}

type workflow struct {
	adapter.TemplateStore
	adapter.CodelistStore
	adapter.SourceOpener
	adapter.ReleaseStore
	controller.UI
	metrics RunMetrics
	now     func() time.Time
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	templates adapter.TemplateStore,
	codelists adapter.CodelistStore,
	sources adapter.SourceOpener,
	releases adapter.ReleaseStore,
	ui controller.UI,
	metrics RunMetrics,
) Workflow {
	return &workflow{
		TemplateStore: templates,
		CodelistStore: codelists,
		SourceOpener:  sources,
		ReleaseStore:  releases,
		UI:            ui,
		metrics:       metrics,
		now:           time.Now,
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (err error) {
	runID := uuid.NewString()
	started := w.now()
	logger := slog.With("run_id", runID)

	defer func() {
		w.metrics.Finish(w.now().Sub(started), err)

		if werr := w.metrics.WriteTextfile(args.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics", "path", args.MetricsFile, "error", werr)
		}
	}()

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		logger.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	tpl, err := w.LoadTemplate(ctx, args.Template)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	codelists, err := w.LoadCodelists(ctx, args.Codelists...)
	if err != nil {
		return fmt.Errorf("load codelists: %w", err)
	}

	stats := NewStats(w.metrics)

	opts := args.Options
	opts.Metrics = stats

	mapper, err := NewMapper(tpl.Mappings, tpl.Schema, codelists, opts)
	if err != nil {
		return fmt.Errorf("build mapper: %w", err)
	}

	source, err := w.OpenSource(args.Source.Driver, args.Source.Connection)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	writer, err := w.Open(ctx, args.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	w.DisplayRunInfo(ctx, controller.RunInfo{
		RunID:      runID,
		Source:     args.Source.Connection,
		Template:   args.Template,
		ShardIndex: opts.Shard.Index,
		ShardTotal: opts.Shard.Total,
	})

	logger.Info("Starting mapping run", "template", args.Template, "driver", args.Source.Driver,
		"shard_index", opts.Shard.Index, "shard_total", opts.Shard.Total)

	if err := w.pipe(ctx, mapper, source, args, writer); err != nil {
		if derr := writer.Discard(); derr != nil {
			logger.Warn("Failed to discard releases", "error", derr)
		}

		logger.Error("Mapping run failed", "error", err)

		return err
	}

	outputPath, err := writer.Close(ctx)
	if err != nil {
		return fmt.Errorf("write releases: %w", err)
	}

	rows, skipped, dropped, released, tags := stats.Snapshot()
	summary := m.RunSummary{
		RunID:         runID,
		RowsRead:      rows,
		RowsSkipped:   skipped,
		ValuesDropped: dropped,
		Releases:      released,
		TagCounts:     tags,
		OutputPath:    outputPath,
		Duration:      w.now().Sub(started),
		ShardIndex:    opts.Shard.Index,
		ShardTotal:    opts.Shard.Total,
	}

	logger.Info("Finished mapping run", "rows", rows, "skipped", skipped, "dropped", dropped,
		"releases", released, "output", outputPath)

	if err := w.DisplaySummary(ctx, summary); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

// pipe runs the mapper and the release writer concurrently, joined by a bounded queue.
func (w *workflow) pipe(ctx context.Context, mapper Mapper, source adapter.RowSource, args RunArgs, writer adapter.ReleaseWriter) error {
	buffer := args.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	releases := make(chan m.Release, buffer)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(releases)

		return mapper.Map(groupCtx, source.Rows(groupCtx, args.Source.Selector), func(rel m.Release) error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case releases <- rel:
				return nil
			}
		})
	})

	group.Go(func() error {
		for rel := range releases {
			if err := writer.Write(rel); err != nil {
				return fmt.Errorf("write release %s: %w", rel.OCID, err)
			}

			w.DisplayRelease(groupCtx, rel)
		}

		return nil
	})

	return group.Wait()
}

func (w *workflow) Validate(ctx context.Context, args ValidateArgs) error {
	if err := w.Start(ctx, controller.WithValidateMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	tpl, err := w.LoadTemplate(ctx, args.Template)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	if _, err := NewPlan(tpl.Mappings, tpl.Schema, true); err != nil {
		return fmt.Errorf("check template: %w", err)
	}

	source, err := w.OpenSource(args.Source.Driver, args.Source.Connection)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	columns, err := source.Columns(ctx, args.Source.Selector)
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}

	report := CompareColumns(columns, tpl.Mappings.Columns())

	if err := w.DisplayValidation(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if !report.OK() {
		return fmt.Errorf("%w: %v", ErrMissingColumns, report.Missing)
	}

	return nil
}

// CompareColumns matches source columns against mapped columns by normalized name.
func CompareColumns(source, mapped []string) m.ValidationReport {
	available := make(map[string]bool, len(source))
	for _, column := range source {
		available[m.NormalizeColumn(column)] = true
	}

	used := make(map[string]bool, len(mapped))
	report := m.ValidationReport{SourceColumns: source, MappedColumns: mapped}

	for _, column := range mapped {
		used[column] = true

		if !available[column] {
			report.Missing = append(report.Missing, column)
		}
	}

	for _, column := range source {
		normalized := m.NormalizeColumn(column)
		if !used[normalized] && !slices.Contains(report.Unmapped, normalized) {
			report.Unmapped = append(report.Unmapped, normalized)
		}
	}

	return report
}
