package model

import "strings"

// Suite is a declarative regression test suite: an ordered list of cases
// loaded once from a YAML file and executed sequentially.
type Suite struct {
	Tests []TestCase `yaml:"tests"`
}

// TestCase pairs one or more module references with an expected extraction
// result. Module and baseline paths are resolved relative to the suite file.
type TestCase struct {
	// Description names the case in reports. Defaults to the module list.
	Description string `yaml:"description,omitempty"`

	// Modules are the entry points whose import-time side effects are
	// extracted for this case.
	Modules []Path `yaml:"modules"`

	// Options overlays this case's configuration on the defaults.
	Options Overrides `yaml:"options,omitempty"`

	// Expected is the path of the baseline file holding the expected residue.
	// A missing baseline file reads as the empty string so first runs can
	// populate it with --update.
	Expected Path `yaml:"expected,omitempty"`

	// ExpectedText is an inline expected residue. Exactly one of Expected
	// and ExpectedText must be set. Inline expectations cannot be rewritten
	// by update mode.
	ExpectedText *string `yaml:"expectedText,omitempty"`
}

// Describe returns the case description, falling back to the module list.
func (tc TestCase) Describe() string {
	if tc.Description != "" {
		return tc.Description
	}

	parts := make([]string, 0, len(tc.Modules))
	for _, mod := range tc.Modules {
		parts = append(parts, string(mod))
	}

	return strings.Join(parts, ", ")
}
