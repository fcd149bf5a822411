package model

// CaseStatus is the outcome of comparing one test case against its baseline.
type CaseStatus int

const (
	// Passed indicates the extraction matched the baseline exactly.
	Passed CaseStatus = iota
	// Failed indicates a mismatch outside update mode.
	Failed
	// Updated indicates a mismatch that was written back to the baseline.
	Updated
)

func (s CaseStatus) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Updated:
		return "updated"
	}

	return "unknown"
}

// CaseResult records the outcome of a single test case.
type CaseResult struct {
	Case   TestCase
	Status CaseStatus

	// Diff is a unified diff between expected and actual residue, set when
	// the case failed.
	Diff string

	// Baseline is the resolved baseline path that was compared or rewritten.
	Baseline Path
}

// SuiteResult aggregates the per-case outcomes of one suite run, in
// declaration order.
type SuiteResult struct {
	Cases []CaseResult
}

// Failed returns the cases whose comparison failed, in declaration order.
func (r SuiteResult) Failed() []CaseResult {
	return r.withStatus(Failed)
}

// Updated returns the cases whose baselines were rewritten.
func (r SuiteResult) Updated() []CaseResult {
	return r.withStatus(Updated)
}

// OK reports whether the whole suite run succeeded.
func (r SuiteResult) OK() bool {
	return len(r.Failed()) == 0
}

func (r SuiteResult) withStatus(status CaseStatus) []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if c.Status == status {
			out = append(out, c)
		}
	}

	return out
}
