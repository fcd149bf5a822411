package model

// Extraction is the outcome of one pipeline invocation. The residual code is
// the side-effect signal: an empty Code means importing the modules executes
// nothing under the configured purity assumptions.
type Extraction struct {
	// Code is the residual source text with any trailing newline trimmed.
	// Populated in both output modes so callers can always inspect it.
	Code string

	// OutputPath and SourceMapPath are set when the result was persisted to
	// disk instead of returned in memory.
	OutputPath    Path
	SourceMapPath Path

	// Dependencies lists every file the bundler's graph walk visited, sorted,
	// excluding the synthetic entry. Only populated when requested.
	Dependencies []string

	// Warnings holds formatted build warnings when surfacing them was
	// requested.
	Warnings []string
}
