package domain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	"sidefx.dev/pkg/sidefx/internal/controller"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// Harness batch-verifies extraction results against stored baselines. Cases
// run strictly sequentially, in declaration order: scratch naming and output
// interleaving stay deterministic and at most one pipeline is in flight.
type Harness interface {
	// Run executes the suite at suitePath. In update mode mismatches rewrite
	// their baselines and are reported as updated rather than failed.
	Run(ctx context.Context, suitePath m.Path, update bool) (m.SuiteResult, error)
}

type harness struct {
	fs        adapter.SourceFSAdapter
	extractor Extractor
	baselines adapter.BaselineStore
	ui        controller.UI
	defaults  m.Config
}

// NewHarness constructs a Harness. The defaults config is overlaid with each
// case's options before extraction.
func NewHarness(
	fsAdapter adapter.SourceFSAdapter,
	extractor Extractor,
	baselines adapter.BaselineStore,
	ui controller.UI,
	defaults m.Config,
) Harness {
	return &harness{
		fs:        fsAdapter,
		extractor: extractor,
		baselines: baselines,
		ui:        ui,
		defaults:  defaults,
	}
}

func (h *harness) Run(ctx context.Context, suitePath m.Path, update bool) (m.SuiteResult, error) {
	suite, suiteDir, err := h.loadSuite(suitePath)
	if err != nil {
		return m.SuiteResult{}, err
	}

	h.ui.SuiteStarted(ctx, len(suite.Tests))

	result := m.SuiteResult{Cases: make([]m.CaseResult, 0, len(suite.Tests))}

	for i, tc := range suite.Tests {
		if err := ctx.Err(); err != nil {
			return m.SuiteResult{}, err
		}

		h.ui.CaseStarted(ctx, i, len(suite.Tests), tc.Describe())

		caseResult, err := h.runCase(ctx, suiteDir, tc, update)
		if err != nil {
			// Pipeline faults and missing inputs are terminal for the whole
			// run; comparison mismatches are not.
			return m.SuiteResult{}, fmt.Errorf("case %q: %w", tc.Describe(), err)
		}

		result.Cases = append(result.Cases, caseResult)
		h.ui.CaseFinished(ctx, caseResult)
	}

	h.ui.SuiteFinished(ctx, result)

	return result, nil
}

func (h *harness) loadSuite(suitePath m.Path) (m.Suite, m.Path, error) {
	data, err := h.fs.ReadFile(suitePath)
	if err != nil {
		return m.Suite{}, "", fmt.Errorf("read suite %s: %w", suitePath, err)
	}

	var suite m.Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return m.Suite{}, "", fmt.Errorf("parse suite %s: %w", suitePath, err)
	}

	if len(suite.Tests) == 0 {
		return m.Suite{}, "", fmt.Errorf("suite %s defines no tests", suitePath)
	}

	for i, tc := range suite.Tests {
		if len(tc.Modules) == 0 {
			return m.Suite{}, "", fmt.Errorf("suite %s: case %d has no modules", suitePath, i)
		}

		if (tc.Expected == "") == (tc.ExpectedText == nil) {
			return m.Suite{}, "", fmt.Errorf(
				"suite %s: case %d must set exactly one of expected and expectedText", suitePath, i)
		}
	}

	abs, err := h.fs.Abs(suitePath)
	if err != nil {
		return m.Suite{}, "", err
	}

	return suite, m.Path(filepath.Dir(string(abs))), nil
}

func (h *harness) runCase(ctx context.Context, suiteDir m.Path, tc m.TestCase, update bool) (m.CaseResult, error) {
	cfg := h.defaults.With(tc.Options)
	cfg.Cwd = suiteDir
	cfg.Output = ""

	extraction, err := h.extractor.Extract(ctx, cfg, tc.Modules)
	if err != nil {
		return m.CaseResult{}, err
	}

	result := m.CaseResult{Case: tc, Status: m.Passed}

	expected := ""

	switch {
	case tc.ExpectedText != nil:
		expected = *tc.ExpectedText
	default:
		result.Baseline = h.resolveBaseline(suiteDir, tc.Expected)

		expected, err = h.baselines.Load(result.Baseline)
		if err != nil {
			return m.CaseResult{}, err
		}
	}

	if extraction.Code == expected {
		return result, nil
	}

	if update && result.Baseline != "" {
		if err := h.baselines.Save(result.Baseline, extraction.Code); err != nil {
			return m.CaseResult{}, err
		}

		result.Status = m.Updated

		return result, nil
	}

	result.Status = m.Failed
	result.Diff = unifiedDiff(expected, extraction.Code)

	return result, nil
}

func (h *harness) resolveBaseline(suiteDir, baseline m.Path) m.Path {
	if filepath.IsAbs(string(baseline)) {
		return baseline
	}

	return h.fs.JoinPath(string(suiteDir), string(baseline))
}

// unifiedDiff renders a classic unified diff between the expected and actual
// residues.
func unifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v", err)
	}

	return diff
}
