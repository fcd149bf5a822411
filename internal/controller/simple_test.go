package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

func newBufferedSimpleUI() (*SimpleUI, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	return NewSimpleUI(cmd), buf
}

func TestSimpleUI_SuiteReporting(t *testing.T) {
	ui, buf := newBufferedSimpleUI()
	ctx := context.Background()

	ui.SuiteStarted(ctx, 2)
	ui.CaseStarted(ctx, 0, 2, "stays clean")
	ui.CaseFinished(ctx, m.CaseResult{Status: m.Passed})
	ui.CaseStarted(ctx, 1, 2, "regressed")
	ui.CaseFinished(ctx, m.CaseResult{
		Case:   m.TestCase{Description: "regressed"},
		Status: m.Failed,
		Diff:   "--- expected\n+++ actual\n+console.log(1);\n",
	})
	ui.SuiteFinished(ctx, m.SuiteResult{Cases: []m.CaseResult{
		{Status: m.Passed},
		{Case: m.TestCase{Description: "regressed"}, Status: m.Failed},
	}})

	out := buf.String()

	for _, want := range []string{
		"Running 2 side-effect test case(s)",
		"[1/2] stays clean",
		"[2/2] regressed",
		"+console.log(1);",
		"1 passed, 1 failed, 0 updated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestSimpleUI_UpdatedCaseNamesBaseline(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	ui.CaseFinished(context.Background(), m.CaseResult{
		Status:   m.Updated,
		Baseline: "baselines/core.txt",
	})

	if !strings.Contains(buf.String(), "baselines/core.txt") {
		t.Errorf("output misses the rewritten baseline:\n%s", buf.String())
	}
}

func TestSimpleUI_DisplayResidue(t *testing.T) {
	t.Run("empty residue prints nothing", func(t *testing.T) {
		ui, buf := newBufferedSimpleUI()

		ui.DisplayResidue(context.Background(), "")

		if buf.Len() != 0 {
			t.Errorf("empty residue produced output: %q", buf.String())
		}
	})

	t.Run("residue is printed verbatim", func(t *testing.T) {
		ui, buf := newBufferedSimpleUI()

		ui.DisplayResidue(context.Background(), "console.log(1);")

		if buf.String() != "console.log(1);\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestSimpleUI_DisplayFindings(t *testing.T) {
	t.Run("table includes every finding and a total", func(t *testing.T) {
		ui, buf := newBufferedSimpleUI()

		ui.DisplayFindings(context.Background(), []m.Finding{
			{File: "src/a.js", Line: 3, Column: 7, Message: "Avoid toplevel property access."},
			{File: "src/b.ts", Line: 1, Column: 1, Message: "Avoid toplevel property access."},
		})

		out := buf.String()

		for _, want := range []string{"src/a.js", "src/b.ts", "Total 2"} {
			if !strings.Contains(out, want) {
				t.Errorf("output misses %q:\n%s", want, out)
			}
		}
	})

	t.Run("no findings prints the all-clear", func(t *testing.T) {
		ui, buf := newBufferedSimpleUI()

		ui.DisplayFindings(context.Background(), nil)

		if !strings.Contains(buf.String(), "No toplevel property access found.") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestSimpleUI_DisplayDependencies(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	ui.DisplayDependencies(context.Background(), []string{"src/a.js", "src/b.js"})

	out := buf.String()

	if !strings.Contains(out, "Dependency files (2):") {
		t.Errorf("output misses the header:\n%s", out)
	}

	if !strings.Contains(out, "src/a.js") || !strings.Contains(out, "src/b.js") {
		t.Errorf("output misses files:\n%s", out)
	}
}

func TestSimpleUI_CancelledContextSilences(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.SuiteStarted(ctx, 1)
	ui.DisplayResidue(ctx, "console.log(1);")
	ui.DisplayFindings(ctx, []m.Finding{{File: "a.js"}})

	if buf.Len() != 0 {
		t.Errorf("cancelled context still produced output: %q", buf.String())
	}
}
