package domain

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// Options tunes a Mapper.
type Options struct {
	OCIDPrefix       string
	ForcePublish     bool
	CodelistFallback []string
	SlotArrays       []string
	Now              func() time.Time
	Metrics          Metrics
	Shard            Shard
}

// Mapper groups contiguous rows by business key and emits one release per group.
type Mapper interface {
	// Map streams releases to emit as soon as each one is finalized. A release in
	// progress when ctx is cancelled is discarded.
	Map(ctx context.Context, rows iter.Seq2[m.Row, error], emit func(m.Release) error) error
	// MapAll collects every release. Intended for small inputs.
	MapAll(ctx context.Context, rows iter.Seq2[m.Row, error]) ([]m.Release, error)
}

type mapper struct {
	plan      *Plan
	assembler *Assembler
	finalizer *Finalizer
	metrics   Metrics
	shard     Shard
}

// NewMapper validates the template and builds the execution plan.
func NewMapper(table *m.MappingTable, schema *m.SchemaIndex, codelists m.Codelists, opts Options) (Mapper, error) {
	plan, err := NewPlan(table, schema, opts.ForcePublish)
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}

	slog.Debug("Built execution plan", "key_column", plan.KeyColumn, "steps", len(plan.Steps))

	return &mapper{
		plan:      plan,
		assembler: NewAssembler(schema, codelists, opts.CodelistFallback, opts.SlotArrays),
		finalizer: NewFinalizer(schema, opts.OCIDPrefix, opts.Now),
		metrics:   metrics,
		shard:     opts.Shard,
	}, nil
}

func (mp *mapper) Map(ctx context.Context, rows iter.Seq2[m.Row, error], emit func(m.Release) error) error {
	var draft *Draft

	flush := func() error {
		if draft == nil {
			return nil
		}

		rel, err := mp.finalizer.Finalize(draft)
		draft = nil

		if err != nil {
			return fmt.Errorf("finalize release: %w", err)
		}

		mp.metrics.ReleaseEmitted(rel.Tag)

		return emit(rel)
	}

	for row, err := range rows {
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		if ctx.Err() != nil {
			slog.Debug("Mapping cancelled, discarding draft")
			return ctx.Err()
		}

		mp.metrics.RowRead()

		row = row.Normalize()

		key, ok := mp.key(row)
		if !ok {
			slog.Warn("Skipping row without business key", "column", mp.plan.KeyColumn)
			mp.metrics.RowSkipped(SkipMissingKey)

			continue
		}

		// A foreign key still ends the open run, so shards split releases
		// exactly where an unsharded run would.
		if draft != nil && draft.Key != key {
			if err := flush(); err != nil {
				return err
			}
		}

		if !mp.shard.Owns(key) {
			mp.metrics.RowSkipped(SkipOtherShard)
			continue
		}

		if draft == nil {
			draft = NewDraft(key)
		}

		mp.absorb(draft, row)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return flush()
}

func (mp *mapper) MapAll(ctx context.Context, rows iter.Seq2[m.Row, error]) ([]m.Release, error) {
	var releases []m.Release

	err := mp.Map(ctx, rows, func(rel m.Release) error {
		releases = append(releases, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return releases, nil
}

func (mp *mapper) key(row m.Row) (string, bool) {
	raw, ok := row.Get(mp.plan.KeyColumn)
	if !ok {
		return "", false
	}

	v, ok := m.FromRaw(raw)
	if !ok {
		return "", false
	}

	s, ok := v.(m.Scalar)
	if !ok {
		return "", false
	}

	return s.String(), true
}

func (mp *mapper) absorb(d *Draft, row m.Row) {
	for _, step := range mp.plan.Steps {
		raw, ok := row.Get(step.Column)
		if !ok {
			continue
		}

		if mp.assembler.Assemble(d, step.Path, raw) == OutcomeDropped {
			mp.metrics.ValueDropped(step.Path)
		}
	}
}
