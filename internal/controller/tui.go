package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// TUI implements UI with a Bubble Tea progress display for suite runs.
// Non-suite output (residue, findings) falls back to the plain UI: those are
// terminal results, not progress.
type TUI struct {
	cmd     *cobra.Command
	plain   *SimpleUI
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		cmd:   cmd,
		plain: NewSimpleUI(cmd),
	}
}

type caseStartedMsg struct {
	index       int
	total       int
	description string
}

type caseFinishedMsg struct {
	result m.CaseResult
}

type suiteFinishedMsg struct {
	result m.SuiteResult
}

// SuiteStarted launches the progress display. The harness itself stays
// sequential; only rendering happens off the main flow.
func (t *TUI) SuiteStarted(ctx context.Context, total int) {
	if ctx.Err() != nil {
		return
	}

	model := newSuiteModel(total)
	t.program = tea.NewProgram(model, tea.WithOutput(t.cmd.OutOrStdout()))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()
}

// CaseStarted feeds the running case into the display.
func (t *TUI) CaseStarted(ctx context.Context, index, total int, description string) {
	if ctx.Err() != nil || t.program == nil {
		return
	}

	t.program.Send(caseStartedMsg{index: index, total: total, description: description})
}

// CaseFinished feeds one case outcome into the display.
func (t *TUI) CaseFinished(ctx context.Context, result m.CaseResult) {
	if ctx.Err() != nil || t.program == nil {
		return
	}

	t.program.Send(caseFinishedMsg{result: result})
}

// SuiteFinished feeds the summary and stops the display.
func (t *TUI) SuiteFinished(ctx context.Context, result m.SuiteResult) {
	if ctx.Err() != nil || t.program == nil {
		return
	}

	t.program.Send(suiteFinishedMsg{result: result})
}

// Wait blocks until the progress display has rendered its final frame.
func (t *TUI) Wait(ctx context.Context) {
	if t.done == nil {
		return
	}

	select {
	case <-t.done:
	case <-ctx.Done():
		if t.program != nil {
			t.program.Kill()
		}
	}
}

// DisplayResidue prints residual code, with a friendly note when the modules
// turned out side-effect free.
func (t *TUI) DisplayResidue(ctx context.Context, code string) {
	if ctx.Err() == nil && code == "" {
		_, _ = fmt.Fprintln(t.cmd.OutOrStdout(), passStyle.Render("No import-time side effects found."))
		return
	}

	t.plain.DisplayResidue(ctx, code)
}

// DisplayDependencies prints dependency files through the plain UI.
func (t *TUI) DisplayDependencies(ctx context.Context, files []string) {
	t.plain.DisplayDependencies(ctx, files)
}

// DisplayWarnings prints build warnings through the plain UI.
func (t *TUI) DisplayWarnings(ctx context.Context, warnings []string) {
	t.plain.DisplayWarnings(ctx, warnings)
}

// DisplayFindings prints lint findings through the plain UI.
func (t *TUI) DisplayFindings(ctx context.Context, findings []m.Finding) {
	t.plain.DisplayFindings(ctx, findings)
}

type caseLine struct {
	description string
	result      *m.CaseResult
}

// suiteModel is the Bubble Tea model for a suite run: finished cases above,
// a spinner on the case in flight, a summary once done.
type suiteModel struct {
	spinner  spinner.Model
	total    int
	cases    []caseLine
	running  bool
	finished bool
	summary  *m.SuiteResult
}

func newSuiteModel(total int) suiteModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	return suiteModel{
		spinner: sp,
		total:   total,
	}
}

func (sm suiteModel) Init() tea.Cmd {
	return sm.spinner.Tick
}

func (sm suiteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case caseStartedMsg:
		sm.cases = append(sm.cases, caseLine{description: msg.description})
		sm.running = true

		return sm, nil

	case caseFinishedMsg:
		if len(sm.cases) > 0 {
			result := msg.result
			sm.cases[len(sm.cases)-1].result = &result
		}

		sm.running = false

		return sm, nil

	case suiteFinishedMsg:
		result := msg.result
		sm.summary = &result
		sm.finished = true

		return sm, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return sm, tea.Quit
		}

		return sm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		sm.spinner, cmd = sm.spinner.Update(msg)

		return sm, cmd
	}

	return sm, nil
}

func (sm suiteModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Running %d side-effect test case(s)\n", sm.total)

	for i, line := range sm.cases {
		switch {
		case line.result != nil:
			fmt.Fprintf(&b, "  %s %s\n", statusLabel(line.result.Status), line.description)
		case sm.running && i == len(sm.cases)-1:
			fmt.Fprintf(&b, "  %s %s\n", sm.spinner.View(), line.description)
		default:
			fmt.Fprintf(&b, "    %s\n", line.description)
		}
	}

	if sm.summary != nil {
		failed := sm.summary.Failed()
		updated := sm.summary.Updated()
		passed := len(sm.summary.Cases) - len(failed) - len(updated)

		fmt.Fprintf(&b, "\n%d passed, %d failed, %d updated\n", passed, len(failed), len(updated))

		for _, c := range failed {
			if c.Diff != "" {
				fmt.Fprintf(&b, "\n%s %s\n%s", statusLabel(m.Failed), c.Case.Describe(), c.Diff)
			}
		}
	}

	return b.String()
}
