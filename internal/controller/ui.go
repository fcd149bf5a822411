// Package controller provides output adapters for displaying extraction,
// suite and lint results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// UI is the interface the commands and the harness report through.
// Implementations can use different output methods (plain text, TUI).
type UI interface {
	// SuiteStarted announces a suite run of total cases.
	SuiteStarted(ctx context.Context, total int)
	// CaseStarted announces that case index (0-based) of total is running.
	CaseStarted(ctx context.Context, index, total int, description string)
	// CaseFinished reports one case's outcome, including its diff on failure.
	CaseFinished(ctx context.Context, result m.CaseResult)
	// SuiteFinished reports the aggregate outcome.
	SuiteFinished(ctx context.Context, result m.SuiteResult)
	// Wait blocks until any interactive display has finished rendering.
	Wait(ctx context.Context)

	// DisplayResidue prints residual code to standard output.
	DisplayResidue(ctx context.Context, code string)
	// DisplayDependencies prints the visited dependency files.
	DisplayDependencies(ctx context.Context, files []string)
	// DisplayWarnings prints surfaced build warnings.
	DisplayWarnings(ctx context.Context, warnings []string)
	// DisplayFindings renders lint findings as a table.
	DisplayFindings(ctx context.Context, findings []m.Finding)
}

// NewUI picks the TUI for interactive terminals and the plain UI otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
