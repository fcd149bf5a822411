package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// SimpleUI implements UI with sequential writes to the cobra command's
// output. It is the non-interactive fallback and keeps case output strictly
// in execution order.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// SuiteStarted prints the suite header.
func (s *SimpleUI) SuiteStarted(ctx context.Context, total int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Running %d side-effect test case(s)\n", total)
}

// CaseStarted prints the running case.
func (s *SimpleUI) CaseStarted(ctx context.Context, index, total int, description string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%d/%d] %s\n", index+1, total, description)
}

// CaseFinished prints the case outcome and, on failure, the residue diff.
func (s *SimpleUI) CaseFinished(ctx context.Context, result m.CaseResult) {
	if ctx.Err() != nil {
		return
	}

	s.printf("  %s\n", statusLabel(result.Status))

	if result.Status == m.Failed && result.Diff != "" {
		s.printf("%s\n", result.Diff)
	}

	if result.Status == m.Updated {
		s.printf("  baseline written: %s\n", result.Baseline)
	}
}

// SuiteFinished prints the aggregate summary.
func (s *SimpleUI) SuiteFinished(ctx context.Context, result m.SuiteResult) {
	if ctx.Err() != nil {
		return
	}

	failed := result.Failed()
	updated := result.Updated()
	passed := len(result.Cases) - len(failed) - len(updated)

	s.printf("\n%d passed, %d failed, %d updated\n", passed, len(failed), len(updated))

	for _, c := range failed {
		s.printf("  %s %s\n", statusLabel(m.Failed), c.Case.Describe())
	}
}

// Wait is a no-op for SimpleUI; output is already flushed.
func (s *SimpleUI) Wait(ctx context.Context) {
	_ = ctx
}

// DisplayResidue prints residual code. An empty residue prints nothing so
// piped output stays machine-readable: no output means no side effects.
func (s *SimpleUI) DisplayResidue(ctx context.Context, code string) {
	if ctx.Err() != nil || code == "" {
		return
	}

	s.printf("%s\n", code)
}

// DisplayDependencies prints the visited dependency files, one per line.
func (s *SimpleUI) DisplayDependencies(ctx context.Context, files []string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\nDependency files (%d):\n", len(files))

	for _, file := range files {
		s.printf("  %s\n", file)
	}
}

// DisplayWarnings prints surfaced build warnings.
func (s *SimpleUI) DisplayWarnings(ctx context.Context, warnings []string) {
	if ctx.Err() != nil {
		return
	}

	for _, warning := range warnings {
		s.printf("%s", updatedStyle.Render(warning))
	}
}

// DisplayFindings renders lint findings as a table with a total footer.
func (s *SimpleUI) DisplayFindings(ctx context.Context, findings []m.Finding) {
	if ctx.Err() != nil {
		return
	}

	if len(findings) == 0 {
		s.printf("%s\n", passStyle.Render("No toplevel property access found."))
		return
	}

	s.printf("%s", renderFindingsTable(findings))
}

func renderFindingsTable(findings []m.Finding) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Line", "Col", "Message"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	for _, f := range findings {
		table.Append([]string{
			string(f.File),
			fmt.Sprintf("%d", f.Line),
			fmt.Sprintf("%d", f.Column),
			f.Message,
		})
	}

	table.SetFooter([]string{fmt.Sprintf("Total %d", len(findings)), "", "", ""})
	table.Render()

	return buf.String()
}

func statusLabel(status m.CaseStatus) string {
	switch status {
	case m.Passed:
		return passStyle.Render("PASS")
	case m.Failed:
		return failStyle.Render("FAIL")
	case m.Updated:
		return updatedStyle.Render("UPDATED")
	}

	return status.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
