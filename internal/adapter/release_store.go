package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/viant/afs"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
	"ocdsmap.dev/pkg/ocdsmap/pkg"
)

// OutputSpec describes where and how releases are written.
type OutputSpec struct {
	Directory string
	// Package wraps the releases in a release package envelope.
	Package  bool
	Meta     m.PackageMeta
	SpillDir string
}

// ReleaseStore opens writers for finalized releases.
type ReleaseStore interface {
	Open(ctx context.Context, spec OutputSpec) (ReleaseWriter, error)
}

// ReleaseWriter accumulates releases and writes them out as one document.
type ReleaseWriter interface {
	Write(rel m.Release) error
	// Close writes the output document and returns its location.
	Close(ctx context.Context) (string, error)
	// Discard drops everything written so far.
	Discard() error
}

type releaseStore struct {
	fs  afs.Service
	now func() time.Time
}

// NewReleaseStore returns a store writing through afs, so the output directory may
// be any afs URL.
func NewReleaseStore() ReleaseStore {
	return &releaseStore{fs: afs.New(), now: time.Now}
}

// PackageFileName names the output document after its publication date.
func PackageFileName(published time.Time) string {
	return "release-package-" + published.UTC().Format("20060102T150405Z") + ".json"
}

func (s *releaseStore) Open(_ context.Context, spec OutputSpec) (ReleaseWriter, error) {
	if spec.Directory == "" {
		return nil, &m.ConfigError{Component: "output", Message: "no output directory configured"}
	}

	spill, err := pkg.NewFileSpill[[]byte](pkg.WithDir(spec.SpillDir), pkg.WithPattern("releases-*.gob"))
	if err != nil {
		return nil, fmt.Errorf("open release spill: %w", err)
	}

	return &releaseWriter{fs: s.fs, now: s.now, spec: spec, spill: spill}, nil
}

type releaseWriter struct {
	fs    afs.Service
	now   func() time.Time
	spec  OutputSpec
	spill pkg.FileSpill[[]byte]
}

func (w *releaseWriter) Write(rel m.Release) error {
	b, err := json.Marshal(rel)
	if err != nil {
		return fmt.Errorf("marshal release %s: %w", rel.OCID, err)
	}

	return w.spill.Append(b)
}

func (w *releaseWriter) Close(ctx context.Context) (string, error) {
	defer func() {
		if err := w.spill.Remove(); err != nil {
			slog.Warn("Failed to remove release spill", "path", w.spill.Path(), "error", err)
		}
	}()

	if err := w.spill.Close(); err != nil {
		return "", fmt.Errorf("close release spill: %w", err)
	}

	dir := strings.TrimSuffix(w.spec.Directory, "/")

	if ok, _ := w.fs.Exists(ctx, dir); !ok {
		if err := w.fs.Create(ctx, dir, 0o755, true); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	published := w.now().UTC()
	target := dir + "/" + PackageFileName(published)

	reader, writer := io.Pipe()

	go func() {
		writer.CloseWithError(w.encode(writer, published))
	}()

	if err := w.fs.Upload(ctx, target, 0o644, reader); err != nil {
		reader.CloseWithError(err)
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	slog.Info("Wrote releases", "path", target, "count", w.spill.Len())

	return target, nil
}

func (w *releaseWriter) Discard() error {
	return w.spill.Remove()
}

// encode streams the output document: the envelope fields when packaging, then the
// releases array read back from the spill.
func (w *releaseWriter) encode(out io.Writer, published time.Time) error {
	buf := bufio.NewWriter(out)

	head := []byte("{")

	if w.spec.Package {
		meta := w.spec.Meta
		meta.PublishedDate = published.Format(time.RFC3339)

		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal package meta: %w", err)
		}

		head = append(b[:len(b)-1], ',')
	}

	if _, err := buf.Write(append(head, []byte(`"releases":[`)...)); err != nil {
		return err
	}

	err := w.spill.Range(func(i uint64, rel []byte) error {
		if i > 0 {
			if err := buf.WriteByte(','); err != nil {
				return err
			}
		}

		_, err := buf.Write(rel)

		return err
	})
	if err != nil {
		return err
	}

	if _, err := buf.WriteString("]}\n"); err != nil {
		return err
	}

	return buf.Flush()
}
