// Package pkg provides reusable utilities for ocdsmap.
package pkg

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// DefaultSpillDir is used when no directory is configured.
var DefaultSpillDir = os.TempDir()

// FileSpill is an append-only, disk-backed sequence of items of type T.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
	// Remove closes the spill and deletes its file.
	Remove() error
}

// SpillOption configures NewFileSpill.
type SpillOption func(*spillConfig)

type spillConfig struct {
	dir     string
	pattern string
}

// WithDir places the spill file in dir.
func WithDir(dir string) SpillOption {
	return func(c *spillConfig) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithPattern sets the os.CreateTemp pattern of the spill file.
func WithPattern(pattern string) SpillOption {
	return func(c *spillConfig) {
		if pattern != "" {
			c.pattern = pattern
		}
	}
}

type fileSpillImpl[T any] struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
}

// NewFileSpill creates a new FileSpill for items of type T.
func NewFileSpill[T any](opts ...SpillOption) (FileSpill[T], error) {
	cfg := spillConfig{dir: DefaultSpillDir, pattern: "spill-*.gob"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(cfg.dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(cfg.dir, cfg.pattern)
	if err != nil {
		slog.Error("failed to create spill file", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("created filespill", "path", file.Name())

	buf := bufio.NewWriter(file)

	return &fileSpillImpl[T]{
		path:    file.Name(),
		file:    file,
		buf:     buf,
		encoder: gob.NewEncoder(buf),
	}, nil
}

// Append implements FileSpill.
func (f *fileSpillImpl[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errors.New("append to closed spill")
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	f.length++

	return nil
}

// Path implements FileSpill.
func (f *fileSpillImpl[T]) Path() string {
	return f.path
}

// AppendBatch implements FileSpill.
func (f *fileSpillImpl[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := f.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements FileSpill. Items stay readable after Close.
func (f *fileSpillImpl[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closeLocked()
}

func (f *fileSpillImpl[T]) closeLocked() error {
	if f.closed {
		return nil
	}

	f.closed = true

	if err := f.buf.Flush(); err != nil {
		slog.Error("failed to flush spill", "path", f.path, "error", err)
		return err
	}

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close file", "path", f.path, "error", err)
		return err
	}

	slog.Debug("closed filespill", "path", f.path, "length", f.length)

	return nil
}

// Remove implements FileSpill.
func (f *fileSpillImpl[T]) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	closeErr := f.closeLocked()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove spill: %w", err)
	}

	return closeErr
}

// Get implements FileSpill.
func (f *fileSpillImpl[T]) Get(index uint64) (T, error) {
	var zero T

	if index >= f.Len() {
		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, f.Len())
	}

	var (
		item  T
		found bool
	)

	err := f.Range(func(i uint64, it T) error {
		if i == index {
			item, found = it, true
			return errStopRange
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStopRange) {
		return zero, err
	}

	if !found {
		return zero, fmt.Errorf("index %d not found", index)
	}

	return item, nil
}

var errStopRange = errors.New("stop range")

// Len implements FileSpill.
func (f *fileSpillImpl[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

// Range implements FileSpill. Items are decoded one at a time, in append order.
func (f *fileSpillImpl[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		if err := f.buf.Flush(); err != nil {
			return fmt.Errorf("flush spill: %w", err)
		}
	}

	file, err := os.Open(f.path)
	if err != nil {
		slog.Error("failed to open file for range", "path", f.path, "error", err)
		return fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close file", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(bufio.NewReader(file))

	for i := range f.length {
		var item T

		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item during range", "path", f.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}
