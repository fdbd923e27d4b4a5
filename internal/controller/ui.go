// Package controller provides output adapters for displaying mapping runs.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeValidate
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	label string
}

// WithRunMode sets the UI to mapping mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithValidateMode sets the UI to validation mode.
func WithValidateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeValidate
	}
}

// WithLabel sets the text shown next to the progress indicator.
func WithLabel(label string) StartOption {
	return func(c *StartConfig) {
		c.label = label
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.label == "" {
		cfg.label = "Mapping rows"
		if cfg.mode == ModeValidate {
			cfg.label = "Reading columns"
		}
	}

	return cfg
}

// RunInfo describes a run before the first row is read.
type RunInfo struct {
	RunID      string
	Source     string
	Template   string
	ShardIndex int
	ShardTotal int
}

// UI defines the interface for reporting mapping progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish
	DisplayRunInfo(ctx context.Context, info RunInfo)
	DisplayRelease(ctx context.Context, release m.Release)
	DisplaySummary(ctx context.Context, summary m.RunSummary) error
	DisplayValidation(ctx context.Context, report m.ValidationReport) error
}

// NewUI picks the TUI for terminals and the plain text UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
