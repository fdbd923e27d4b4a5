package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress view.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.program != nil {
		return nil
	}

	cfg := newStartConfig(options...)
	p.program = tea.NewProgram(newProgressModel(cfg.label), tea.WithOutput(p.output), tea.WithInput(nil))
	p.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(p.program, p.done)

	return nil
}

// Close stops the progress view and waits for it to restore the terminal.
func (p *TUI) Close(_ context.Context) {
	p.mu.Lock()
	program, done := p.program, p.done
	p.program, p.done = nil, nil
	p.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(stopMsg{})
	<-done
}

// Wait blocks until the progress view exits.
func (p *TUI) Wait(ctx context.Context) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// DisplayRunInfo shows the run header above the progress line.
func (p *TUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(runInfoMsg(info))
}

// DisplayRelease advances the release counter.
func (p *TUI) DisplayRelease(ctx context.Context, release m.Release) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(releaseMsg{ocid: release.OCID, tags: release.Tag})
}

// DisplaySummary stops the progress view and prints the run totals.
func (p *TUI) DisplaySummary(ctx context.Context, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.Close(ctx)

	_, err := fmt.Fprintln(p.output, renderSummaryBox(summary))

	return err
}

// DisplayValidation stops the progress view and prints the column comparison.
func (p *TUI) DisplayValidation(ctx context.Context, report m.ValidationReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.Close(ctx)

	_, err := fmt.Fprintln(p.output, renderValidationBox(report))

	return err
}

func (p *TUI) send(msg tea.Msg) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

type stopMsg struct{}

type runInfoMsg RunInfo

type releaseMsg struct {
	ocid string
	tags []string
}

// progressModel is the Bubble Tea model of a running mapping.
type progressModel struct {
	spinner  spinner.Model
	label    string
	info     *RunInfo
	releases int
	last     string
	tags     []string
	quitting bool
}

func newProgressModel(label string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return progressModel{spinner: s, label: label}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		pm.quitting = true
		return pm, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			pm.quitting = true
			return pm, tea.Quit
		}

		return pm, nil

	case runInfoMsg:
		info := RunInfo(msg)
		pm.info = &info

		return pm, nil

	case releaseMsg:
		pm.releases++
		pm.last = msg.ocid
		pm.tags = msg.tags

		return pm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	if pm.info != nil {
		b.WriteString(titleStyle.Render("ocdsmap") + " " + faintStyle.Render(pm.info.RunID) + "\n")
		fmt.Fprintf(&b, "  %s -> %s\n", pm.info.Source, pm.info.Template)

		if pm.info.ShardTotal > 1 {
			fmt.Fprintf(&b, "  shard %d/%d\n", pm.info.ShardIndex, pm.info.ShardTotal)
		}
	}

	fmt.Fprintf(&b, "%s %s: %d releases", pm.spinner.View(), pm.label, pm.releases)

	if pm.last != "" {
		b.WriteString("  " + faintStyle.Render(pm.last))

		if len(pm.tags) > 0 {
			b.WriteString(" " + faintStyle.Render("["+strings.Join(pm.tags, ", ")+"]"))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func renderSummaryBox(summary m.RunSummary) string {
	title := okStyle.Render(fmt.Sprintf("Mapped %d release(s)", summary.Releases))
	if summary.RowsSkipped > 0 || summary.ValuesDropped > 0 {
		title = warnStyle.Render(fmt.Sprintf("Mapped %d release(s) with %d skipped row(s) and %d dropped value(s)",
			summary.Releases, summary.RowsSkipped, summary.ValuesDropped))
	}

	return summaryStyle.Render(title + "\n\n" + strings.TrimRight(renderSummaryTable(summary), "\n"))
}

func renderValidationBox(report m.ValidationReport) string {
	title := okStyle.Render("All mapped columns are available")
	if !report.OK() {
		title = warnStyle.Render(fmt.Sprintf("%d mapped column(s) missing from the source", len(report.Missing)))
	}

	body := title + "\n\n" + strings.TrimRight(renderValidationTable(report), "\n")

	if diff := renderColumnDiff(report); diff != "" {
		body += "\n\n" + strings.TrimRight(diff, "\n")
	}

	return summaryStyle.Render(body)
}
